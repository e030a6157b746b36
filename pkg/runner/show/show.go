// Package show prints a single item.
package show

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/printers"
	"tableflip.dev/stow/pkg/store"
	"tableflip.dev/stow/pkg/view"
)

// Fetcher reads one item from the inventory service.
type Fetcher interface {
	FetchItem(ctx context.Context, id string, containments bool) (item.Record, error)
}

type Show struct {
	ID     string
	JSON   bool
	Config *store.Config
	Items  Fetcher
	Out    io.Writer
}

func (n *Show) Do(ctx context.Context) error {
	if n.Items == nil {
		return errors.New("can not show, no service")
	}
	rec, err := n.Items.FetchItem(ctx, n.ID, true)
	if err != nil {
		return err
	}

	detail := ""
	if n.Config != nil {
		detail = n.Config.DetailLink(rec.ID)
	}

	if n.JSON {
		v := view.Record(rec)
		v.Detail = detail
		return printers.JSON(n.Out, v)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Record(rec, detail)
	return nil
}
