package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tableflip.dev/stow/pkg/item"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewValidatesURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://x", "://bad"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestFetchItemRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/items/a b" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("containments") != "true" {
			t.Errorf("containments query = %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id")
		}
		_, _ = io.WriteString(w, `{"id":"a b","name":"Box","containments":["c"]}`)
	})
	rec, err := c.FetchItem(context.Background(), "a b", true)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.Name != "Box" || len(rec.Containments) != 1 {
		t.Fatalf("record = %#v", rec)
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     Kind
		notFound bool
		message  string
	}{
		{name: "status", status: http.StatusInternalServerError, body: `oops`, kind: KindTransport},
		{name: "not found", status: http.StatusNotFound, body: `{"error":"no such item"}`, kind: KindTransport, notFound: true, message: "no such item"},
		{name: "error field", status: http.StatusOK, body: `{"error":"locked"}`, kind: KindServer, message: "locked"},
		{name: "malformed", status: http.StatusOK, body: `{"id":`, kind: KindMalformed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := c.FetchItem(context.Background(), "x", false)
			var re *Error
			if !errors.As(err, &re) {
				t.Fatalf("error %v is not *Error", err)
			}
			if re.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", re.Kind, tc.kind)
			}
			if errors.Is(err, ErrNotFound) != tc.notFound {
				t.Fatalf("errors.Is(ErrNotFound) = %t", !tc.notFound)
			}
			if tc.message != "" && Message(err) != tc.message {
				t.Fatalf("message = %q, want %q", Message(err), tc.message)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.FetchRoots(context.Background())
	var re *Error
	if !errors.As(err, &re) || re.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSaveItemSendsPatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body) != 1 || body["name"] != "Crate" {
			t.Errorf("body = %v", body)
		}
		_, _ = io.WriteString(w, `{"id":"A","name":"Crate","slug":"a","is_deleted":false}`)
	})
	rec, err := c.SaveItem(context.Background(), "A", item.Patch{Name: item.String("Crate")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.Name != "Crate" {
		t.Fatalf("record = %#v", rec)
	}
}

func TestMoveItem(t *testing.T) {
	var reply string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/items/A/move" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body moveRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.DestinationID != "pinned" {
			t.Errorf("destination = %q", body.DestinationID)
		}
		_, _ = io.WriteString(w, reply)
	})

	reply = `{"ok":true}`
	if err := c.MoveItem(context.Background(), "A", "pinned"); err != nil {
		t.Fatalf("move: %v", err)
	}

	reply = `{"ok":false,"error":"destination full"}`
	err := c.MoveItem(context.Background(), "A", "pinned")
	var re *Error
	if !errors.As(err, &re) || re.Kind != KindServer || re.Message != "destination full" {
		t.Fatalf("expected server error, got %v", err)
	}

	reply = `{"ok":false}`
	if err := c.MoveItem(context.Background(), "A", "pinned"); Message(err) != "move rejected" {
		t.Fatalf("expected generic rejection, got %v", err)
	}
}

func TestSearchQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "pinned" || q.Get("table") != ItemsTable {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `[{"id":""},{"id":"P","is_pinned":true}]`)
	})
	recs, err := c.Search(context.Background(), "pinned", ItemsTable)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(recs) != 2 || recs[1].ID != "P" {
		t.Fatalf("records = %#v", recs)
	}
}
