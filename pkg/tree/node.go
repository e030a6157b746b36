// Package tree keeps the materialized containment forest as immutable nodes.
// Every write copies only the path from the edited node up to its root, so
// untouched subtrees keep their pointer identity between versions.
package tree

import (
	"errors"

	"tableflip.dev/stow/pkg/item"
)

// ErrCycle reports a commit that would place a node beneath itself. Ancestor
// exclusion in the loader should make it unreachable.
var ErrCycle = errors.New("tree: node would contain itself")

// Node is one materialized item in the forest. A published Node is never
// modified; Update builds replacements.
type Node struct {
	ID       string
	Data     item.Record
	Children []*Node

	Open              bool
	HasLoadedChildren bool
	LoadingChildren   bool
	LoadErr           string
}

// NewNode builds a collapsed, unloaded node for rec. Nested children on the
// record are dropped.
func NewNode(rec item.Record) *Node {
	rec.Children = nil
	return &Node{ID: rec.ID, Data: rec}
}

// Expandable reports whether the node should offer an expand affordance.
// Before its children load this is seeded from the declared containment list;
// a record that did not carry the list at all stays expandable.
func (n *Node) Expandable() bool {
	if n == nil {
		return false
	}
	if n.HasLoadedChildren {
		return len(n.Children) > 0
	}
	if n.Data.Containments == nil {
		return true
	}
	for _, id := range n.Data.Containments {
		if id != "" {
			return true
		}
	}
	return false
}

// ChildIDs lists the ids of the loaded children.
func (n *Node) ChildIDs() []string {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return ids
}
