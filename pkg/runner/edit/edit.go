// Package edit runs single mutations from the command line.
package edit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/printers"
	"tableflip.dev/stow/pkg/view"
)

// Target is what every mutation runner shares.
type Target struct {
	ID     string
	JSON   bool
	Engine *engine.Engine
	Out    io.Writer
}

func (t *Target) check(verb string) error {
	if t.Engine == nil {
		return fmt.Errorf("can not %s, no engine", verb)
	}
	if t.ID == "" {
		return errors.New("requires an item id")
	}
	return nil
}

func (t *Target) saved(ctx context.Context, task engine.Task) error {
	msg, err := t.Engine.Do(ctx, task)
	if err != nil {
		return err
	}
	s, ok := msg.(engine.Saved)
	if !ok {
		return fmt.Errorf("unexpected result %T", msg)
	}
	return t.print(s.Record)
}

func (t *Target) print(rec item.Record) error {
	if t.JSON {
		return printers.JSON(t.Out, view.Record(rec))
	}
	pp := printers.PrettyPrint{Out: t.Out}
	pp.NewLine()
	pp.Record(rec, "")
	return nil
}

type Rename struct {
	Target
	Name string
}

func (n *Rename) Do(ctx context.Context) error {
	if err := n.check("rename"); err != nil {
		return err
	}
	return n.saved(ctx, n.Engine.Rename(n.ID, n.Name))
}

// Delete soft deletes an item, or clears the flag when Restore is set.
type Delete struct {
	Target
	Restore bool
}

func (n *Delete) Do(ctx context.Context) error {
	if n.Restore {
		if err := n.check("restore"); err != nil {
			return err
		}
		return n.saved(ctx, n.Engine.Restore(n.ID))
	}
	if err := n.check("delete"); err != nil {
		return err
	}
	return n.saved(ctx, n.Engine.SoftDelete(n.ID))
}

// Move places an item in a new container, then prints the reloaded roots.
type Move struct {
	Target
	Destination string
}

func (n *Move) Do(ctx context.Context) error {
	if err := n.check("move"); err != nil {
		return err
	}
	if _, err := n.Engine.Do(ctx, n.Engine.Move(n.ID, n.Destination)); err != nil {
		return err
	}

	if n.JSON {
		return printers.JSON(n.Out, map[string]any{
			"moved":       n.ID,
			"destination": n.Destination,
			"roots":       view.Forest(n.Engine.Forest()),
		})
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = color.New(color.Faint).Fprintln(out, n.Engine.Status())
	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Forest(n.Engine.Forest())
	return nil
}
