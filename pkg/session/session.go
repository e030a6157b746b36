// Package session holds the short-lived state behind the edit and move modal.
package session

import (
	"context"
	"errors"
	"strings"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/remote"
)

// ErrBusy is returned when a submit is already in flight.
var ErrBusy = errors.New("session: submit in progress")

// ErrClosed is returned for operations on a closed session.
var ErrClosed = errors.New("session: closed")

// Mode selects what the modal edits.
type Mode int

const (
	Edit Mode = iota
	Move
)

func (m Mode) String() string {
	if m == Move {
		return "move"
	}
	return "edit"
}

// Suggester resolves the pinned move shortcut.
type Suggester interface {
	PinnedSuggestion(ctx context.Context) (item.Record, bool, error)
}

// Session is the modal state for one node. It is owned by a single goroutine;
// only the context returned by Context may be handed to other goroutines.
type Session struct {
	ID          string
	Token       uint64
	Mode        Mode
	Name        string
	Destination string
	Busy        bool
	Err         string

	Suggestion *item.Record

	ctx    context.Context
	cancel context.CancelFunc
}

// Open starts a session for rec. token must be unique among sessions opened
// by the same owner; late results are matched against it.
func Open(parent context.Context, rec item.Record, token uint64) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:     rec.ID,
		Token:  token,
		Name:   rec.Name,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close cancels outstanding lookups. It is safe to call more than once.
func (s *Session) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
}

// Closed reports whether Close has been called or the parent ended.
func (s *Session) Closed() bool {
	return s == nil || s.ctx.Err() != nil
}

// SetMode switches between editing and moving and clears any error.
func (s *Session) SetMode(m Mode) {
	s.Mode = m
	s.Err = ""
}

// Begin marks a submit in flight.
func (s *Session) Begin() error {
	switch {
	case s.Closed():
		return ErrClosed
	case s.Busy:
		return ErrBusy
	}
	s.Busy = true
	s.Err = ""
	return nil
}

// Fail clears the busy flag and shows err inline so the user can retry.
func (s *Session) Fail(err error) {
	s.Busy = false
	if err != nil {
		s.Err = remote.Message(err)
	}
}

// Patch is the save body for the current name buffer, or false when the
// name did not change.
func (s *Session) Patch(current item.Record) (item.Patch, bool) {
	name := strings.TrimSpace(s.Name)
	if name == current.Name {
		return item.Patch{}, false
	}
	return item.Patch{Name: item.String(name)}, true
}

// SuggestionLoaded carries a pinned suggestion lookup result.
type SuggestionLoaded struct {
	ID     string
	Token  uint64
	Record item.Record
	Found  bool
	Err    error
}

// Lookup returns a blocking func that resolves the pinned suggestion under
// the session's context. Run it off the owner goroutine.
func (s *Session) Lookup(sg Suggester) func() SuggestionLoaded {
	ctx, id, token := s.ctx, s.ID, s.Token
	return func() SuggestionLoaded {
		rec, found, err := sg.PinnedSuggestion(ctx)
		return SuggestionLoaded{ID: id, Token: token, Record: rec, Found: found, Err: err}
	}
}

// ApplySuggestion folds msg into the session. It reports false, changing
// nothing, when msg belongs to another session or this one has closed.
func (s *Session) ApplySuggestion(msg SuggestionLoaded) bool {
	if s.Closed() || msg.Token != s.Token || msg.ID != s.ID {
		return false
	}
	if msg.Err != nil || !msg.Found || msg.Record.ID == s.ID {
		s.Suggestion = nil
		return true
	}
	rec := msg.Record
	s.Suggestion = &rec
	return true
}

// UseSuggestion copies the suggestion into the destination buffer.
func (s *Session) UseSuggestion() bool {
	if s.Suggestion == nil {
		return false
	}
	s.Mode = Move
	s.Destination = s.Suggestion.ID
	return true
}
