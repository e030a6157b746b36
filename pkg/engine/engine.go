// Package engine owns the containment forest. Every state change happens in
// an Engine method called from a single goroutine; network work is handed
// out as Tasks whose results come back through Apply.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/loader"
	"tableflip.dev/stow/pkg/mutate"
	"tableflip.dev/stow/pkg/remote"
	"tableflip.dev/stow/pkg/session"
	"tableflip.dev/stow/pkg/store"
	"tableflip.dev/stow/pkg/tree"
)

// Options configure an Engine.
type Options struct {
	Service     remote.Service
	Parallel    int
	PinnedQuery string
	// OpenState remembers open nodes across sessions. Defaults to memory.
	OpenState store.OpenState
	Logger    *slog.Logger
}

// Engine is the single owner of the forest.
type Engine struct {
	svc    remote.Service
	loader *loader.Loader
	mutate *mutate.Coordinator
	open   store.OpenState
	log    *slog.Logger

	forest *tree.Forest

	ctx    context.Context
	cancel context.CancelFunc

	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc

	loadingRoots bool
	fatal        error
	status       string
	// keepStatus holds the current status over the next root load.
	keepStatus bool

	modal  *session.Session
	tokens uint64
}

// New builds an Engine. Call Reload to populate it.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	open := opts.OpenState
	if open == nil {
		open = store.Memory()
	}
	ctx, cancel := context.WithCancel(context.Background())
	genCtx, genCancel := context.WithCancel(ctx)
	return &Engine{
		svc:       opts.Service,
		loader:    loader.New(opts.Service, loader.WithParallel(opts.Parallel), loader.WithLogger(log)),
		mutate:    mutate.New(opts.Service, opts.PinnedQuery, log),
		open:      open,
		log:       log,
		forest:    tree.NewForest(),
		ctx:       ctx,
		cancel:    cancel,
		genCtx:    genCtx,
		genCancel: genCancel,
	}
}

// Forest is the current snapshot. Compare pointers to detect change.
func (e *Engine) Forest() *tree.Forest { return e.forest }

// Status is the last non-fatal status line.
func (e *Engine) Status() string { return e.status }

// Fatal is the root load failure, if any. The tree cannot be used until a
// later Reload succeeds.
func (e *Engine) Fatal() error { return e.fatal }

// Loading reports whether a root load is outstanding.
func (e *Engine) Loading() bool { return e.loadingRoots }

// Generation identifies the current root load.
func (e *Engine) Generation() uint64 { return e.gen }

// Closed reports whether Close was called.
func (e *Engine) Closed() bool { return e.ctx.Err() != nil }

// Close cancels all outstanding work and closes the modal. Late results are
// dropped by Apply.
func (e *Engine) Close() {
	e.CloseModal()
	e.cancel()
}

// Reload starts a new generation and fetches the roots. Results of earlier
// generations are dropped when they arrive.
func (e *Engine) Reload() Task {
	e.genCancel()
	e.gen++
	e.genCtx, e.genCancel = context.WithCancel(e.ctx)
	e.loadingRoots = true
	gen := e.gen
	e.log.Debug("reload", "gen", gen)
	return bind(e.genCtx, func(ctx context.Context) Msg {
		recs, err := e.svc.FetchRoots(ctx)
		return RootsLoaded{Generation: gen, Records: recs, Err: err}
	})
}

// Toggle opens or closes id. The returned Task is nil when no fetch is needed.
func (e *Engine) Toggle(id string) Task {
	n := e.forest.Find(id)
	action, fn := loader.Toggle(n)
	e.log.Debug("toggle", "id", id, "action", action.String())
	switch action {
	case loader.Collapse:
		e.forest = e.forest.Update(id, fn)
		e.remember(id, false)
	case loader.Reopen:
		e.forest = e.forest.Update(id, fn)
		e.remember(id, true)
	case loader.Fetch:
		return e.fetch(id, fn)
	}
	return nil
}

// Expand opens id if it is closed, fetching children when needed.
func (e *Engine) Expand(id string) Task {
	n := e.forest.Find(id)
	if n == nil || n.Open {
		return nil
	}
	return e.Toggle(id)
}

// Collapse closes id if it is open.
func (e *Engine) Collapse(id string) {
	if n := e.forest.Find(id); n != nil && n.Open {
		e.Toggle(id)
	}
}

func (e *Engine) fetch(id string, mark func(tree.Node) tree.Node) Task {
	ancestors, ok := e.forest.AncestorIDs(id)
	if !ok {
		return nil
	}
	e.forest = e.forest.Update(id, mark)
	gen := e.gen
	return bind(e.genCtx, func(ctx context.Context) Msg {
		exp, err := e.loader.Load(ctx, id, ancestors)
		return Expanded{Generation: gen, ID: id, Expansion: exp, Err: err}
	})
}

// Save submits patch for id outside of any modal.
func (e *Engine) Save(id string, patch item.Patch) Task {
	return e.save(id, patch, 0)
}

// Rename is Save with a name patch.
func (e *Engine) Rename(id, name string) Task {
	return e.Save(id, item.Patch{Name: item.String(name)})
}

// SoftDelete flags id deleted; it stays in the tree.
func (e *Engine) SoftDelete(id string) Task {
	return e.Save(id, item.Patch{Deleted: item.Bool(true)})
}

// Restore clears the deleted flag on id.
func (e *Engine) Restore(id string) Task {
	return e.Save(id, item.Patch{Deleted: item.Bool(false)})
}

func (e *Engine) save(id string, patch item.Patch, token uint64) Task {
	return bind(e.ctx, func(ctx context.Context) Msg {
		var (
			rec item.Record
			err error
		)
		if patch.Name != nil && patch.Deleted == nil && patch.Pinned == nil && patch.Associations == nil {
			rec, err = e.mutate.Rename(ctx, id, *patch.Name)
		} else {
			rec, err = e.mutate.Save(ctx, id, patch)
		}
		return Saved{ID: id, Token: token, Patch: patch, Record: rec, Err: err}
	})
}

// Move places itemID into destinationID and, on success, reloads the forest.
func (e *Engine) Move(itemID, destinationID string) Task {
	return e.move(itemID, destinationID, 0)
}

func (e *Engine) move(itemID, destinationID string, token uint64) Task {
	return bind(e.ctx, func(ctx context.Context) Msg {
		err := e.mutate.Move(ctx, itemID, destinationID)
		return Moved{ID: itemID, Destination: destinationID, Token: token, Err: err}
	})
}

// PinnedSuggestion resolves the pinned item outside of a modal.
func (e *Engine) PinnedSuggestion(ctx context.Context) (item.Record, bool, error) {
	return e.mutate.PinnedSuggestion(ctx)
}

// Apply commits a task result and returns follow-up tasks.
func (e *Engine) Apply(msg Msg) []Task {
	if msg == nil {
		return nil
	}
	if e.Closed() {
		e.log.Debug("dropped after close", "msg", fmt.Sprintf("%T", msg), "detail", msg.Describe())
		return nil
	}
	e.log.Debug("apply", "msg", fmt.Sprintf("%T", msg), "detail", msg.Describe())
	switch m := msg.(type) {
	case RootsLoaded:
		return e.applyRoots(m)
	case Expanded:
		return e.applyExpanded(m)
	case Saved:
		e.applySaved(m)
	case Moved:
		return e.applyMoved(m)
	case Suggested:
		if e.modal != nil && !e.modal.ApplySuggestion(m.SuggestionLoaded) {
			e.log.Debug("dropped stale suggestion", "id", m.ID, "token", m.Token)
		}
	}
	return nil
}

func (e *Engine) applyRoots(m RootsLoaded) []Task {
	if m.Generation != e.gen {
		e.log.Debug("dropped stale roots", "gen", m.Generation, "current", e.gen)
		return nil
	}
	e.loadingRoots = false
	keep := e.keepStatus
	e.keepStatus = false
	if m.Err != nil {
		e.fatal = m.Err
		e.log.Error("load roots failed", "err", m.Err)
		return nil
	}
	e.fatal = nil
	roots := make([]*tree.Node, 0, len(m.Records))
	seen := make(map[string]struct{}, len(m.Records))
	for _, rec := range m.Records {
		if rec.ID == "" {
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		roots = append(roots, tree.NewNode(rec))
	}
	e.forest = tree.NewForest(roots...)
	if !keep {
		e.status = fmt.Sprintf("loaded %d roots", len(roots))
	}
	return e.restore(roots)
}

func (e *Engine) applyExpanded(m Expanded) []Task {
	if m.Generation != e.gen {
		e.log.Debug("dropped stale expansion", "id", m.ID, "gen", m.Generation, "current", e.gen)
		return nil
	}
	if m.Err == nil {
		m.Err = e.forest.CanAdopt(m.ID, m.Expansion.ChildIDs())
	}
	if m.Err != nil {
		e.forest = e.forest.Update(m.ID, loader.Fail(m.Err))
		e.status = fmt.Sprintf("expand %s failed: %s", e.label(m.ID), remote.Message(m.Err))
		e.log.Warn("expand failed", "id", m.ID, "err", m.Err)
		return nil
	}
	e.forest = e.forest.Update(m.ID, loader.Commit(m.Expansion))
	e.remember(m.ID, true)
	if len(m.Expansion.Missing) > 0 {
		e.log.Info("skipped missing children", "id", m.ID, "missing", m.Expansion.Missing)
	}
	return e.restore(m.Expansion.Children)
}

func (e *Engine) applySaved(m Saved) {
	owned := e.modal != nil && e.modal.Token == m.Token && e.modal.ID == m.ID
	if m.Err != nil {
		if owned {
			e.modal.Fail(m.Err)
		}
		e.status = fmt.Sprintf("save %s failed: %s", e.label(m.ID), remote.Message(m.Err))
		return
	}
	e.forest = e.forest.UpdateAll(m.ID, tree.Merge(m.Record))
	e.status = fmt.Sprintf("saved %s", m.Record.DisplayName())
	if owned {
		e.CloseModal()
	}
}

func (e *Engine) applyMoved(m Moved) []Task {
	owned := e.modal != nil && e.modal.Token == m.Token && e.modal.ID == m.ID
	if m.Err != nil {
		if owned {
			e.modal.Fail(m.Err)
		}
		e.status = fmt.Sprintf("move %s failed: %s", e.label(m.ID), remote.Message(m.Err))
		return nil
	}
	if owned {
		e.CloseModal()
	}
	if err := e.open.Clear(); err != nil {
		e.log.Warn("clear open state", "err", err)
	}
	e.status = fmt.Sprintf("moved %s to %s", e.label(m.ID), m.Destination)
	e.keepStatus = true
	return []Task{e.Reload()}
}

// restore expands nodes that were open in an earlier session.
func (e *Engine) restore(nodes []*tree.Node) []Task {
	var tasks []Task
	for _, n := range nodes {
		if !e.open.IsOpen(n.ID) {
			continue
		}
		if t := e.Expand(n.ID); t != nil {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (e *Engine) remember(id string, open bool) {
	if err := e.open.SetOpen(id, open); err != nil {
		e.log.Warn("persist open state", "id", id, "err", err)
	}
}

func (e *Engine) label(id string) string {
	if n := e.forest.Find(id); n != nil {
		return n.Data.Label()
	}
	return id
}

// Run executes tasks and their follow-ups one at a time on the calling
// goroutine, which becomes the owner for the duration.
func (e *Engine) Run(ctx context.Context, tasks ...Task) error {
	queue := append([]Task(nil), tasks...)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := queue[0]
		queue = queue[1:]
		if t == nil {
			continue
		}
		queue = append(queue, e.Apply(t(ctx))...)
	}
	return ctx.Err()
}

// Do runs t on the calling goroutine, applies its result and runs the
// follow-ups. It returns the first result and the error it carried, so
// headless callers see failures the tree would only show inline.
func (e *Engine) Do(ctx context.Context, t Task) (Msg, error) {
	if t == nil {
		return nil, nil
	}
	msg := t(ctx)
	follow := e.Apply(msg)
	if err := ResultErr(msg); err != nil {
		return msg, err
	}
	if len(follow) == 0 {
		return msg, nil
	}
	if err := e.Run(ctx, follow...); err != nil {
		return msg, err
	}
	return msg, e.fatal
}

// ResultErr is the error carried by a task result, if any.
func ResultErr(msg Msg) error {
	switch m := msg.(type) {
	case RootsLoaded:
		return m.Err
	case Expanded:
		return m.Err
	case Saved:
		return m.Err
	case Moved:
		return m.Err
	case Suggested:
		return m.Err
	}
	return nil
}

// ErrNotLoaded is returned by callers that need a node not in the forest.
var ErrNotLoaded = errors.New("engine: item not loaded")

// bind runs fn under ctx and scope; cancelling either cancels the work.
func bind(scope context.Context, fn func(ctx context.Context) Msg) Task {
	return func(ctx context.Context) Msg {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(scope, cancel)
		defer stop()
		return fn(ctx)
	}
}
