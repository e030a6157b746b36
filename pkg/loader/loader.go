// Package loader expands one tree node at a time: it fetches the node's record
// and declared containment ids, drops ids already on the node's path, and
// fetches the remaining children without descending further.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/remote"
	"tableflip.dev/stow/pkg/tree"
)

// DefaultParallel bounds concurrent child fetches when no option is given.
const DefaultParallel = 4

// Fetcher loads a single item record.
type Fetcher interface {
	FetchItem(ctx context.Context, id string, includeContainments bool) (item.Record, error)
}

// Loader fetches expansions.
type Loader struct {
	items    Fetcher
	parallel int
	log      *slog.Logger
}

// Option customises a Loader.
type Option func(*Loader)

// WithParallel bounds concurrent child fetches. Values below 1 are ignored.
func WithParallel(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.parallel = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New builds a Loader over items.
func New(items Fetcher, opts ...Option) *Loader {
	l := &Loader{
		items:    items,
		parallel: DefaultParallel,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Expansion is the result of loading one node.
type Expansion struct {
	ID       string
	Parent   item.Record
	Children []*tree.Node
	// Excluded lists declared ids dropped because they were on the path.
	Excluded []string
	// Missing lists declared ids the service no longer knows.
	Missing []string
}

// ChildIDs lists the ids of the loaded children in order.
func (e Expansion) ChildIDs() []string {
	ids := make([]string, len(e.Children))
	for i, c := range e.Children {
		ids[i] = c.ID
	}
	return ids
}

// Load fetches the record for id and one level of children. ancestors are the
// ids above id in the tree; they and id itself are never returned as children.
// A child the service reports missing is skipped; any other failure aborts.
func (l *Loader) Load(ctx context.Context, id string, ancestors []string) (Expansion, error) {
	parent, err := l.items.FetchItem(ctx, id, true)
	if err != nil {
		return Expansion{}, fmt.Errorf("loader: fetch %q: %w", id, err)
	}

	invalid := Invalid(id, ancestors)
	ids := FilterContainments(parent.Containments, invalid)
	exp := Expansion{ID: id, Parent: parent, Excluded: excluded(parent.Containments, invalid)}

	records := make([]*item.Record, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallel)
	for i, childID := range ids {
		g.Go(func() error {
			rec, err := l.items.FetchItem(gctx, childID, true)
			if errors.Is(err, remote.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("loader: fetch child %q of %q: %w", childID, id, err)
			}
			if rec.ID == "" {
				rec.ID = childID
			}
			records[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Expansion{}, err
	}

	exp.Children = make([]*tree.Node, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			exp.Missing = append(exp.Missing, ids[i])
			continue
		}
		if _, bad := invalid[rec.ID]; bad {
			exp.Excluded = append(exp.Excluded, rec.ID)
			continue
		}
		exp.Children = append(exp.Children, tree.NewNode(*rec))
	}
	l.log.Debug("expanded node", "id", id, "children", len(exp.Children),
		"excluded", len(exp.Excluded), "missing", len(exp.Missing))
	return exp, nil
}

// Invalid is the set of ids that may not appear as children of id.
func Invalid(id string, ancestors []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ancestors)+1)
	set[id] = struct{}{}
	for _, a := range ancestors {
		set[a] = struct{}{}
	}
	return set
}

// FilterContainments drops blank ids and ids in invalid, and de-duplicates
// while keeping the first occurrence order.
func FilterContainments(declared []string, invalid map[string]struct{}) []string {
	out := make([]string, 0, len(declared))
	seen := make(map[string]struct{}, len(declared))
	for _, raw := range declared {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, bad := invalid[id]; bad {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func excluded(declared []string, invalid map[string]struct{}) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range declared {
		id := strings.TrimSpace(raw)
		if _, bad := invalid[id]; !bad {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
