// Package mutate drives edits against the inventory service.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/remote"
)

// PinnedDestination is the reserved move destination the service resolves
// to the pinned item.
const PinnedDestination = "pinned"

var (
	// ErrEmptyPatch is returned when a save carries no fields.
	ErrEmptyPatch = errors.New("mutate: nothing to save")
	// ErrBlankName is returned by Rename for an empty name.
	ErrBlankName = errors.New("mutate: name is required")
	// ErrNoDestination is returned by Move for an empty destination.
	ErrNoDestination = errors.New("mutate: destination is required")
	// ErrSelfMove is returned when an item would be moved into itself.
	ErrSelfMove = errors.New("mutate: cannot move an item into itself")
)

// Service is the subset of remote.Service used for edits.
type Service interface {
	SaveItem(ctx context.Context, id string, patch item.Patch) (item.Record, error)
	MoveItem(ctx context.Context, itemID, destinationID string) error
	Search(ctx context.Context, query, table string) ([]item.Record, error)
}

// Coordinator submits edits and normalizes their outcomes.
type Coordinator struct {
	Service     Service
	PinnedQuery string
	Log         *slog.Logger
}

// New builds a Coordinator. pinnedQuery defaults to PinnedDestination.
func New(svc Service, pinnedQuery string, log *slog.Logger) *Coordinator {
	if pinnedQuery == "" {
		pinnedQuery = PinnedDestination
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{Service: svc, PinnedQuery: pinnedQuery, Log: log}
}

// Save submits patch for id and returns the full updated record.
func (c *Coordinator) Save(ctx context.Context, id string, patch item.Patch) (item.Record, error) {
	if patch.Empty() {
		return item.Record{}, ErrEmptyPatch
	}
	rec, err := c.Service.SaveItem(ctx, id, patch)
	if err != nil {
		c.Log.Warn("save failed", "id", id, "patch", patch.Describe(), "err", err)
		return item.Record{}, fmt.Errorf("mutate: save %q: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
		rec.Mark(item.FieldID)
	}
	c.Log.Info("saved item", "id", id, "patch", patch.Describe())
	return rec, nil
}

// Rename sets the item's name.
func (c *Coordinator) Rename(ctx context.Context, id, name string) (item.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return item.Record{}, ErrBlankName
	}
	return c.Save(ctx, id, item.Patch{Name: item.String(name)})
}

// SoftDelete flags the item deleted. It stays in the tree.
func (c *Coordinator) SoftDelete(ctx context.Context, id string) (item.Record, error) {
	return c.Save(ctx, id, item.Patch{Deleted: item.Bool(true)})
}

// Restore clears the deleted flag.
func (c *Coordinator) Restore(ctx context.Context, id string) (item.Record, error) {
	return c.Save(ctx, id, item.Patch{Deleted: item.Bool(false)})
}

// Move places itemID inside destinationID, which may be PinnedDestination.
func (c *Coordinator) Move(ctx context.Context, itemID, destinationID string) error {
	destinationID = strings.TrimSpace(destinationID)
	switch {
	case destinationID == "":
		return ErrNoDestination
	case destinationID == itemID:
		return ErrSelfMove
	}
	if err := c.Service.MoveItem(ctx, itemID, destinationID); err != nil {
		c.Log.Warn("move failed", "id", itemID, "destination", destinationID, "err", err)
		return fmt.Errorf("mutate: move %q to %q: %w", itemID, destinationID, err)
	}
	c.Log.Info("moved item", "id", itemID, "destination", destinationID)
	return nil
}

// PinnedSuggestion looks up the pinned item offered as a move shortcut. The
// bool is false when no candidate has a usable id.
func (c *Coordinator) PinnedSuggestion(ctx context.Context) (item.Record, bool, error) {
	recs, err := c.Service.Search(ctx, c.PinnedQuery, remote.ItemsTable)
	if err != nil {
		return item.Record{}, false, fmt.Errorf("mutate: pinned suggestion: %w", err)
	}
	for _, rec := range recs {
		if strings.TrimSpace(rec.ID) != "" {
			return rec, true, nil
		}
	}
	return item.Record{}, false, nil
}
