// Package printers renders the containment forest and single items for the
// non-interactive commands.
package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/stow/pkg/assoc"
	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/tree"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

const idWidth = 12

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), strings.Repeat(" ", idWidth+2))
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " item")
	default:
		_, _ = c.Fprintln(pp.out(), " items")
	}
}

// Forest prints every visible row of f with tree guides.
func (pp *PrettyPrint) Forest(f *tree.Forest) {
	rows := f.Visible()
	if len(rows) == 0 {
		faint := color.New(color.Faint, color.Italic)
		_, _ = faint.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	guide := color.New(color.Faint)
	deleted := color.New(color.Faint, color.CrossedOut)
	failed := color.New(color.FgRed)
	plain := color.New()

	// open[d] is true while the ancestor at depth d still has siblings below.
	var open []bool
	for _, r := range rows {
		open = append(open[:r.Depth], !r.Last)

		if pp.ShowID {
			_, _ = y.Fprint(pp.out(), padID(r.Node.ID))
		}
		var b strings.Builder
		for d := 0; d < r.Depth; d++ {
			if d == r.Depth-1 {
				if r.Last {
					b.WriteString("└─ ")
				} else {
					b.WriteString("├─ ")
				}
			} else if open[d+1] {
				b.WriteString("│  ")
			} else {
				b.WriteString("   ")
			}
		}
		_, _ = guide.Fprint(pp.out(), b.String())
		_, _ = plain.Fprint(pp.out(), disclosure(r.Node)+" ")

		label := r.Node.Data.DisplayName()
		if r.Node.Data.Deleted {
			_, _ = deleted.Fprint(pp.out(), label)
		} else {
			_, _ = plain.Fprint(pp.out(), label)
		}
		if g := assoc.Glyphs(r.Node.Data.Associations); len(g) > 0 {
			_, _ = guide.Fprint(pp.out(), " "+strings.Join(g, ""))
		}
		if r.Node.LoadErr != "" {
			_, _ = failed.Fprint(pp.out(), " ! "+r.Node.LoadErr)
		}
		_, _ = fmt.Fprintln(pp.out(), "")
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Record prints the fields of rec as a two column table.
func (pp *PrettyPrint) Record(rec item.Record, detail string) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("id"), rec.ID)
	tbl.AddRow(bold.Sprint("name"), rec.DisplayName())
	if rec.Slug != "" {
		tbl.AddRow(bold.Sprint("slug"), rec.Slug)
	}
	words := assoc.Words(rec.Associations)
	if len(words) == 0 {
		tbl.AddRow(bold.Sprint("associations"), "none")
	} else {
		tbl.AddRow(bold.Sprint("associations"), fmt.Sprintf("%s %s", strings.Join(assoc.Glyphs(rec.Associations), ""), strings.Join(words, ", ")))
	}
	tbl.AddRow(bold.Sprint("pinned"), yesNo(rec.Pinned))
	tbl.AddRow(bold.Sprint("deleted"), yesNo(rec.Deleted))
	switch {
	case rec.Containments == nil:
		tbl.AddRow(bold.Sprint("contains"), "unknown")
	case len(rec.Containments) == 0:
		tbl.AddRow(bold.Sprint("contains"), "nothing")
	default:
		tbl.AddRow(bold.Sprint("contains"), strings.Join(rec.Containments, ", "))
	}
	if detail != "" {
		tbl.AddRow(bold.Sprint("detail"), detail)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func disclosure(n *tree.Node) string {
	switch {
	case !n.Expandable():
		return "·"
	case n.Open:
		return "▾"
	default:
		return "▸"
	}
}

func padID(id string) string {
	if len(id) > idWidth {
		id = id[:idWidth]
	}
	return id + strings.Repeat(" ", idWidth-len(id)+2)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
