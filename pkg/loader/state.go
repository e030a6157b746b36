package loader

import "tableflip.dev/stow/pkg/tree"

// Action is what a toggle asks the caller to do.
type Action int

const (
	// Nothing means the toggle changed no state (a leaf, or already loading).
	Nothing Action = iota
	// Collapse hides loaded children; they stay in the tree.
	Collapse
	// Reopen shows children that are already loaded.
	Reopen
	// Fetch means the node was marked loading and an expand must be started.
	Fetch
)

func (a Action) String() string {
	switch a {
	case Collapse:
		return "collapse"
	case Reopen:
		return "reopen"
	case Fetch:
		return "fetch"
	default:
		return "nothing"
	}
}

// Toggle decides how a toggle on n proceeds and returns the node update to
// apply. Fetch is only chosen when children were never loaded.
func Toggle(n *tree.Node) (Action, func(tree.Node) tree.Node) {
	switch {
	case n == nil:
		return Nothing, nil
	case n.Open:
		return Collapse, func(n tree.Node) tree.Node {
			n.Open = false
			return n
		}
	case n.LoadingChildren:
		return Nothing, nil
	case n.HasLoadedChildren:
		if len(n.Children) == 0 {
			return Nothing, nil
		}
		return Reopen, func(n tree.Node) tree.Node {
			n.Open = true
			return n
		}
	case !n.Expandable():
		return Nothing, nil
	default:
		return Fetch, MarkLoading
	}
}

// MarkLoading is the optimistic first step of an expand.
func MarkLoading(n tree.Node) tree.Node {
	n.LoadingChildren = true
	n.LoadErr = ""
	return n
}

// Commit folds a finished expansion into its node: the parent record is
// merged, the children replaced, and the node opened.
func Commit(exp Expansion) func(tree.Node) tree.Node {
	return func(n tree.Node) tree.Node {
		n.Data = tree.MergeData(n.Data, exp.Parent)
		n.Children = exp.Children
		n.HasLoadedChildren = true
		n.LoadingChildren = false
		n.LoadErr = ""
		n.Open = true
		return n
	}
}

// Fail returns the node to collapsed so the user can retry.
func Fail(err error) func(tree.Node) tree.Node {
	return func(n tree.Node) tree.Node {
		n.LoadingChildren = false
		n.HasLoadedChildren = false
		n.Open = false
		if err != nil {
			n.LoadErr = err.Error()
		}
		return n
	}
}
