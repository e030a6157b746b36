// Package remotetest provides an in-memory remote.Service for tests.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/remote"
)

// Operation names used by Fail and Calls.
const (
	OpRoots  = "roots"
	OpFetch  = "fetch"
	OpSave   = "save"
	OpMove   = "move"
	OpSearch = "search"
)

// PinnedQuery is the search marker that selects pinned items.
const PinnedQuery = "pinned"

// Call records one invocation.
type Call struct {
	Op           string
	ID           string
	Containments bool
}

// Service is a goroutine-safe fake inventory. Items form an arbitrary
// directed containment graph.
type Service struct {
	mu       sync.Mutex
	items    map[string]item.Record
	roots    []string
	failures map[string]error
	holds    map[string]chan struct{}
	calls    []Call
}

var _ remote.Service = (*Service)(nil)

// New builds an empty service.
func New() *Service {
	return &Service{
		items:    make(map[string]item.Record),
		failures: make(map[string]error),
		holds:    make(map[string]chan struct{}),
	}
}

// Put stores rec, replacing any record with the same id.
func (s *Service) Put(recs ...item.Record) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		if rec.Containments == nil {
			rec.Containments = []string{}
		}
		s.items[rec.ID] = rec
	}
	return s
}

// Item is a shorthand for an item named after its id.
func Item(id string, containments ...string) item.Record {
	if containments == nil {
		containments = []string{}
	}
	return item.Record{ID: id, Name: id, Slug: strings.ToLower(id), Containments: containments}
}

// SetRoots declares the top level ids.
func (s *Service) SetRoots(ids ...string) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = append([]string(nil), ids...)
	return s
}

// Fail makes op on id return err until cleared with a nil err. Use id "" for
// operations without an id (roots, search) or to fail every id.
func (s *Service) Fail(op, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := op + ":" + id
	if err == nil {
		delete(s.failures, key)
		return
	}
	s.failures[key] = err
}

// Hold blocks fetches of id until the returned release func is called.
func (s *Service) Hold(id string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[id] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many times op was invoked.
func (s *Service) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Record returns the stored record for id.
func (s *Service) Record(id string) (item.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	return rec, ok
}

func (s *Service) begin(ctx context.Context, op, id string, containments bool) error {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: op, ID: id, Containments: containments})
	hold := s.holds[id]
	err := s.failures[op+":"+id]
	if err == nil {
		err = s.failures[op+":"]
	}
	s.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return &remote.Error{Kind: remote.KindTransport, Op: op, Err: ctx.Err()}
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// FetchRoots returns the root records with one level of nested children.
func (s *Service) FetchRoots(ctx context.Context) ([]item.Record, error) {
	if err := s.begin(ctx, OpRoots, "", true); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]item.Record, 0, len(s.roots))
	for _, id := range s.roots {
		rec, ok := s.items[id]
		if !ok {
			continue
		}
		rec = clone(rec)
		for _, childID := range rec.Containments {
			if child, ok := s.items[childID]; ok {
				child = clone(child)
				child.Containments = nil
				rec.Children = append(rec.Children, child)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchItem returns the record for id.
func (s *Service) FetchItem(ctx context.Context, id string, includeContainments bool) (item.Record, error) {
	if err := s.begin(ctx, OpFetch, id, includeContainments); err != nil {
		return item.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return item.Record{}, remote.NotFound("fetch item", id)
	}
	rec = clone(rec)
	if !includeContainments {
		rec.Containments = nil
	}
	return rec, nil
}

// SaveItem applies patch and returns the full record, containments included.
func (s *Service) SaveItem(ctx context.Context, id string, patch item.Patch) (item.Record, error) {
	if err := s.begin(ctx, OpSave, id, false); err != nil {
		return item.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return item.Record{}, remote.NotFound("save item", id)
	}
	rec = patch.Apply(rec)
	s.items[id] = rec
	return clone(rec), nil
}

// MoveItem detaches itemID from every container and the root list, then adds
// it to destinationID. The destination "pinned" resolves to the first pinned
// item.
func (s *Service) MoveItem(ctx context.Context, itemID, destinationID string) error {
	if err := s.begin(ctx, OpMove, itemID, false); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[itemID]; !ok {
		return remote.NotFound("move item", itemID)
	}
	if destinationID == PinnedQuery {
		destinationID = ""
		for _, id := range s.sortedIDs() {
			if s.items[id].Pinned && id != itemID {
				destinationID = id
				break
			}
		}
		if destinationID == "" {
			return &remote.Error{Kind: remote.KindServer, Op: "move item", Message: "no pinned item"}
		}
	}
	dest, ok := s.items[destinationID]
	if !ok {
		return &remote.Error{Kind: remote.KindServer, Op: "move item", Message: fmt.Sprintf("unknown destination %q", destinationID)}
	}
	if destinationID == itemID {
		return &remote.Error{Kind: remote.KindServer, Op: "move item", Message: "cannot move an item into itself"}
	}
	for id, rec := range s.items {
		rec.Containments = without(rec.Containments, itemID)
		s.items[id] = rec
	}
	s.roots = without(s.roots, itemID)
	dest = s.items[destinationID]
	dest.Containments = append(dest.Containments, itemID)
	s.items[destinationID] = dest
	return nil
}

// Search matches pinned items for PinnedQuery, otherwise names containing query.
func (s *Service) Search(ctx context.Context, query, table string) ([]item.Record, error) {
	if err := s.begin(ctx, OpSearch, "", false); err != nil {
		return nil, err
	}
	if table != remote.ItemsTable {
		return nil, &remote.Error{Kind: remote.KindServer, Op: "search", Message: fmt.Sprintf("unknown table %q", table)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []item.Record
	for _, id := range s.sortedIDs() {
		rec := s.items[id]
		if query == PinnedQuery && rec.Pinned ||
			query != PinnedQuery && strings.Contains(strings.ToLower(rec.Name), strings.ToLower(query)) {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

func (s *Service) sortedIDs() []string {
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ErrBoom is a generic failure for tests.
var ErrBoom = errors.New("remotetest: boom")

func clone(rec item.Record) item.Record {
	if rec.Containments != nil {
		rec.Containments = append([]string{}, rec.Containments...)
	}
	rec.Children = nil
	return rec
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if ids != nil && out == nil {
		out = []string{}
	}
	return out
}
