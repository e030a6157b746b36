package engine

import (
	"context"
	"fmt"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/session"
)

// Modal is the open session, or nil.
func (e *Engine) Modal() *session.Session { return e.modal }

// OpenModal starts an edit session for id, closing any previous one. The
// returned Task resolves the pinned move suggestion for the new session.
func (e *Engine) OpenModal(id string) (Task, error) {
	n := e.forest.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotLoaded, id)
	}
	e.CloseModal()
	e.tokens++
	s := session.Open(e.ctx, n.Data, e.tokens)
	e.modal = s
	lookup := s.Lookup(e.mutate)
	return func(context.Context) Msg {
		return Suggested{SuggestionLoaded: lookup()}
	}, nil
}

// CloseModal cancels the session and its outstanding lookup.
func (e *Engine) CloseModal() {
	if e.modal == nil {
		return
	}
	e.modal.Close()
	e.modal = nil
}

// SubmitModal saves the edited name, or moves the item in move mode. It
// returns nil when nothing needs to be sent; an unchanged name just closes
// the modal.
func (e *Engine) SubmitModal() Task {
	s := e.modal
	if s == nil {
		return nil
	}
	if s.Mode == session.Move {
		if err := s.Begin(); err != nil {
			return nil
		}
		return e.move(s.ID, s.Destination, s.Token)
	}
	n := e.forest.Find(s.ID)
	if n == nil {
		s.Fail(fmt.Errorf("%w: %q", ErrNotLoaded, s.ID))
		return nil
	}
	patch, changed := s.Patch(n.Data)
	if !changed {
		e.CloseModal()
		return nil
	}
	if err := s.Begin(); err != nil {
		return nil
	}
	return e.save(s.ID, patch, s.Token)
}

// DeleteFromModal soft deletes the modal's item, or restores it when
// deleted is false.
func (e *Engine) DeleteFromModal(deleted bool) Task {
	s := e.modal
	if s == nil || s.Begin() != nil {
		return nil
	}
	return e.save(s.ID, item.Patch{Deleted: item.Bool(deleted)}, s.Token)
}
