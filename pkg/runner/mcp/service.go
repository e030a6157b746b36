// Package mcp provides the Model Context Protocol server integration for stow.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/remote"
	"tableflip.dev/stow/pkg/view"
)

// Fetcher reads single items straight from the inventory service.
type Fetcher interface {
	FetchItem(ctx context.Context, id string, containments bool) (item.Record, error)
}

// Service serializes MCP requests onto one engine. The engine expects a
// single owner, so every call holds the lock for its whole run.
type Service struct {
	mu      sync.Mutex
	eng     *engine.Engine
	items   Fetcher
	started bool
}

// ErrItemNotFound is returned when an item is not known to the service.
var ErrItemNotFound = errors.New("item not found")

// ItemDTO is the item projection returned by every tool.
type ItemDTO = view.Item

// NewService wraps eng. items backs get_item for ids outside the loaded
// forest.
func NewService(eng *engine.Engine, items Fetcher) *Service {
	return &Service{eng: eng, items: items}
}

// ListRoots returns the materialized forest, loading the roots on first use.
func (s *Service) ListRoots(ctx context.Context) ([]ItemDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.roots(), nil
}

// Reset makes the next call reload the roots.
func (s *Service) Reset() {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}

// ExpandItem loads the children of a node already in the forest.
func (s *Service) ExpandItem(ctx context.Context, id string) (ItemDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensure(ctx); err != nil {
		return ItemDTO{}, err
	}
	id = strings.TrimSpace(id)
	if s.eng.Forest().Find(id) == nil {
		return ItemDTO{}, fmt.Errorf("%w: %s (expand its container first)", engine.ErrNotLoaded, id)
	}
	if _, err := s.eng.Do(ctx, s.eng.Expand(id)); err != nil {
		return ItemDTO{}, err
	}
	n := s.eng.Forest().Find(id)
	if n == nil {
		return ItemDTO{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return view.Node(n, 1), nil
}

// GetItem returns the loaded node for id, or fetches it when the forest does
// not hold it.
func (s *Service) GetItem(ctx context.Context, id string) (ItemDTO, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ItemDTO{}, errors.New("id is required")
	}
	s.mu.Lock()
	n := s.eng.Forest().Find(id)
	s.mu.Unlock()
	if n != nil {
		return view.Node(n, 1), nil
	}
	rec, err := s.items.FetchItem(ctx, id, true)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return ItemDTO{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return ItemDTO{}, err
	}
	return view.Record(rec), nil
}

// RenameItem sets the name of id.
func (s *Service) RenameItem(ctx context.Context, id, name string) (ItemDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, s.eng.Rename(strings.TrimSpace(id), name))
}

// DeleteItem soft deletes id, or restores it when restore is set.
func (s *Service) DeleteItem(ctx context.Context, id string, restore bool) (ItemDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = strings.TrimSpace(id)
	if restore {
		return s.save(ctx, s.eng.Restore(id))
	}
	return s.save(ctx, s.eng.SoftDelete(id))
}

// MoveItem moves id under destination and returns the reloaded roots.
func (s *Service) MoveItem(ctx context.Context, id, destination string) ([]ItemDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.eng.Do(ctx, s.eng.Move(strings.TrimSpace(id), destination)); err != nil {
		return nil, err
	}
	s.started = true
	return s.roots(), nil
}

// PinnedSuggestion returns the pinned item, or nil when nothing is pinned.
func (s *Service) PinnedSuggestion(ctx context.Context) (*ItemDTO, error) {
	rec, ok, err := s.eng.PinnedSuggestion(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	dto := view.Record(rec)
	return &dto, nil
}

func (s *Service) roots() []ItemDTO {
	return view.Forest(s.eng.Forest())
}

func (s *Service) ensure(ctx context.Context) error {
	if s.started && s.eng.Fatal() == nil {
		return nil
	}
	if _, err := s.eng.Do(ctx, s.eng.Reload()); err != nil {
		return err
	}
	s.started = true
	return nil
}

func (s *Service) save(ctx context.Context, t engine.Task) (ItemDTO, error) {
	msg, err := s.eng.Do(ctx, t)
	if err != nil {
		return ItemDTO{}, err
	}
	saved, ok := msg.(engine.Saved)
	if !ok {
		return ItemDTO{}, fmt.Errorf("unexpected result %T", msg)
	}
	if n := s.eng.Forest().Find(saved.ID); n != nil {
		return view.Node(n, 0), nil
	}
	return view.Record(saved.Record), nil
}
