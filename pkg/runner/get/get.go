// Package get prints the containment forest.
package get

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/printers"
	"tableflip.dev/stow/pkg/tree"
	"tableflip.dev/stow/pkg/view"
)

type Get struct {
	ShowID bool
	JSON   bool
	// Depth expands every expandable node this many levels below the roots.
	Depth int
	// Expand lists ids to open after Depth is applied, in order. Each id
	// must already be visible.
	Expand []string
	Engine *engine.Engine
	Out    io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Engine == nil {
		return errors.New("can not get, no engine")
	}
	if _, err := n.Engine.Do(ctx, n.Engine.Reload()); err != nil {
		return err
	}

	for level := 0; level < n.Depth; level++ {
		for _, id := range frontier(n.Engine.Forest(), level) {
			if _, err := n.Engine.Do(ctx, n.Engine.Expand(id)); err != nil {
				return err
			}
		}
	}
	for _, id := range n.Expand {
		if n.Engine.Forest().Find(id) == nil {
			return fmt.Errorf("%w: %s", engine.ErrNotLoaded, id)
		}
		if _, err := n.Engine.Do(ctx, n.Engine.Expand(id)); err != nil {
			return err
		}
	}

	if n.JSON {
		return printers.JSON(n.Out, view.Forest(n.Engine.Forest()))
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.NewLine()
	pp.Forest(n.Engine.Forest())
	return nil
}

// frontier lists the expandable, still closed nodes visible at depth.
func frontier(f *tree.Forest, depth int) []string {
	var ids []string
	for _, r := range f.Visible() {
		if r.Depth == depth && !r.Node.Open && r.Node.Expandable() {
			ids = append(ids, r.Node.ID)
		}
	}
	return ids
}
