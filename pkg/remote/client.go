package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"tableflip.dev/stow/pkg/item"
)

const maxBodyBytes = 8 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the service root, e.g. http://localhost:8000.
	BaseURL string
	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration
	// RequestsPerSecond paces outgoing requests; 0 disables pacing.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client is the HTTP implementation of Service.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

var _ Service = (*Client)(nil)

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("remote: server url required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", base.Scheme)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Client{base: base, http: hc, log: logger}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// FetchRoots lists the top level items.
func (c *Client) FetchRoots(ctx context.Context) ([]item.Record, error) {
	var out []item.Record
	if err := c.do(ctx, "fetch roots", http.MethodGet, "/api/items/roots", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchItem loads a single item, optionally with its declared containment ids.
func (c *Client) FetchItem(ctx context.Context, id string, includeContainments bool) (item.Record, error) {
	q := url.Values{}
	q.Set("containments", strconv.FormatBool(includeContainments))
	var out item.Record
	if err := c.do(ctx, "fetch item", http.MethodGet, "/api/items/"+url.PathEscape(id), q, nil, &out); err != nil {
		return item.Record{}, err
	}
	return out, nil
}

// SaveItem submits the patch and returns the full updated record.
func (c *Client) SaveItem(ctx context.Context, id string, patch item.Patch) (item.Record, error) {
	var out item.Record
	if err := c.do(ctx, "save item", http.MethodPatch, "/api/items/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return item.Record{}, err
	}
	return out, nil
}

type moveRequest struct {
	DestinationID string `json:"destinationId"`
}

type moveResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// MoveItem places itemID inside destinationID.
func (c *Client) MoveItem(ctx context.Context, itemID, destinationID string) error {
	var out moveResponse
	path := "/api/items/" + url.PathEscape(itemID) + "/move"
	if err := c.do(ctx, "move item", http.MethodPost, path, nil, moveRequest{DestinationID: destinationID}, &out); err != nil {
		return err
	}
	if !out.OK {
		msg := out.Error
		if msg == "" {
			msg = "move rejected"
		}
		return &Error{Kind: KindServer, Op: "move item", Message: msg}
	}
	return nil
}

// Search runs a query against table.
func (c *Client) Search(ctx context.Context, query, table string) ([]item.Record, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("table", table)
	var out []item.Record
	if err := c.do(ctx, "search", http.MethodGet, "/api/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
	}

	target := c.base.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindMalformed, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("remote request failed", "op", op, "request_id", requestID, "error", err)
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.Debug("remote request", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Message: errorField(data)}
	}
	if msg := errorField(data); msg != "" {
		return &Error{Kind: KindServer, Op: op, Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// errorField returns the "error" string of an object payload, if any.
func errorField(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err != nil {
		return ""
	}
	return strings.TrimSpace(msg)
}
