// Package view projects tree nodes and records into plain JSON-friendly
// values for the CLI and the MCP server.
package view

import (
	"strings"

	"tableflip.dev/stow/pkg/assoc"
	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/tree"
)

// Item is a transport-friendly projection of a tree node or record.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug,omitempty"`
	Display      string   `json:"display"`
	Associations []string `json:"associations,omitempty"`
	Glyphs       string   `json:"glyphs,omitempty"`
	Deleted      bool     `json:"deleted"`
	Pinned       bool     `json:"pinned"`
	Containments []string `json:"containments,omitempty"`
	Expandable   bool     `json:"expandable"`
	Loaded       bool     `json:"loaded"`
	Open         bool     `json:"open"`
	Error        string   `json:"error,omitempty"`
	Detail       string   `json:"detail,omitempty"`
	Children     []Item   `json:"children,omitempty"`
}

// All is the depth that follows every open node.
const All = -1

// Node projects n. depth limits how many loaded levels are included; All
// follows every open node instead.
func Node(n *tree.Node, depth int) Item {
	v := Record(n.Data)
	v.Expandable = n.Expandable()
	v.Loaded = n.HasLoadedChildren
	v.Open = n.Open
	v.Error = n.LoadErr
	if !n.HasLoadedChildren || depth == 0 || (depth < 0 && !n.Open) {
		return v
	}
	v.Children = make([]Item, 0, len(n.Children))
	for _, c := range n.Children {
		v.Children = append(v.Children, Node(c, depth-1))
	}
	return v
}

// Forest projects every root of f and its open descendants.
func Forest(f *tree.Forest) []Item {
	roots := f.Roots()
	out := make([]Item, 0, len(roots))
	for _, n := range roots {
		out = append(out, Node(n, All))
	}
	return out
}

// Record projects rec without any tree state.
func Record(rec item.Record) Item {
	return Item{
		ID:           rec.ID,
		Name:         rec.Name,
		Slug:         rec.Slug,
		Display:      rec.DisplayName(),
		Associations: assoc.Words(rec.Associations),
		Glyphs:       strings.Join(assoc.Glyphs(rec.Associations), ""),
		Deleted:      rec.Deleted,
		Pinned:       rec.Pinned,
		Containments: rec.Containments,
		Expandable:   tree.NewNode(rec).Expandable(),
	}
}
