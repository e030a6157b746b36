// Package key provides CLI helpers to display the association legend.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/stow/pkg/assoc"
)

// Key prints the glyphs drawn next to items and the association each one
// stands for.
type Key struct {
	// Out defaults to color.Output.
	Out io.Writer
}

// Do renders the association key.
func (k *Key) Do(ctx context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, k.Table(ctx, assoc.Table()))
	_, _ = fmt.Fprintln(out, "")
	return nil
}

// Table builds the legend for glyphs.
func (k *Key) Table(_ context.Context, glyphs []assoc.Glyph) *uitable.Table {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Glyph"), bold.Sprint("Association"), bold.Sprint("Meaning"))
	for _, g := range glyphs {
		tbl.AddRow(g.Symbol, g.Word, g.Meaning)
	}
	tbl.RightAlign(0)
	return tbl
}
