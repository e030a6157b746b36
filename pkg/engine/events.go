package engine

import (
	"context"
	"fmt"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/loader"
	"tableflip.dev/stow/pkg/session"
)

// Msg is a task result handed back to Apply.
type Msg interface {
	// Describe renders the message for logs.
	Describe() string
}

// Task is network work produced by the engine. It runs off the owner
// goroutine and its Msg is passed back to Apply.
type Task func(ctx context.Context) Msg

// RootsLoaded carries the result of Reload.
type RootsLoaded struct {
	Generation uint64
	Records    []item.Record
	Err        error
}

// Describe implements Msg.
func (m RootsLoaded) Describe() string {
	return fmt.Sprintf(`gen:%d roots:%d err:%q`, m.Generation, len(m.Records), errText(m.Err))
}

// Expanded carries one node expansion.
type Expanded struct {
	Generation uint64
	ID         string
	Expansion  loader.Expansion
	Err        error
}

// Describe implements Msg.
func (m Expanded) Describe() string {
	return fmt.Sprintf(`gen:%d id:%q children:%d err:%q`, m.Generation, m.ID, len(m.Expansion.Children), errText(m.Err))
}

// Saved carries a save result. Token is the modal session that submitted it,
// zero when there was none.
type Saved struct {
	ID     string
	Token  uint64
	Patch  item.Patch
	Record item.Record
	Err    error
}

// Describe implements Msg.
func (m Saved) Describe() string {
	return fmt.Sprintf(`id:%q patch:%q token:%d err:%q`, m.ID, m.Patch.Describe(), m.Token, errText(m.Err))
}

// Moved carries a move result.
type Moved struct {
	ID          string
	Destination string
	Token       uint64
	Err         error
}

// Describe implements Msg.
func (m Moved) Describe() string {
	return fmt.Sprintf(`id:%q destination:%q token:%d err:%q`, m.ID, m.Destination, m.Token, errText(m.Err))
}

// Suggested carries a pinned suggestion for a modal session.
type Suggested struct {
	session.SuggestionLoaded
}

// Describe implements Msg.
func (m Suggested) Describe() string {
	return fmt.Sprintf(`id:%q token:%d found:%t suggestion:%q err:%q`, m.ID, m.Token, m.Found, m.Record.ID, errText(m.Err))
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
