package tree

// Forest is an immutable, ordered list of root nodes. Writes return a new
// *Forest; a write that changes nothing returns the receiver itself.
type Forest struct {
	roots []*Node
}

// NewForest builds a forest over roots. Nil roots are skipped.
func NewForest(roots ...*Node) *Forest {
	out := make([]*Node, 0, len(roots))
	for _, r := range roots {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Forest{roots: out}
}

// Roots returns the root nodes. The slice must not be modified.
func (f *Forest) Roots() []*Node {
	if f == nil {
		return nil
	}
	return f.roots
}

// Len is the number of roots.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.roots)
}

// Find returns the first node with id in depth-first order, or nil.
func (f *Forest) Find(id string) *Node {
	var found *Node
	f.Walk(func(n *Node, _ []*Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// AncestorIDs returns the ids on the path from a root down to the first node
// with id, excluding that node. ok is false when id is not in the forest.
func (f *Forest) AncestorIDs(id string) (ids []string, ok bool) {
	f.Walk(func(n *Node, path []*Node) bool {
		if n.ID != id {
			return true
		}
		ids = make([]string, len(path))
		for i, p := range path {
			ids[i] = p.ID
		}
		ok = true
		return false
	})
	return ids, ok
}

// Walk visits every node depth-first, loaded children included whether or not
// the node is open. path holds the ancestors of n, root first, and is only
// valid during the call. Returning false stops the walk.
func (f *Forest) Walk(fn func(n *Node, path []*Node) bool) {
	if f == nil {
		return
	}
	var path []*Node
	var walk func(nodes []*Node) bool
	walk = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !fn(n, path) {
				return false
			}
			if len(n.Children) == 0 {
				continue
			}
			path = append(path, n)
			if !walk(n.Children) {
				return false
			}
			path = path[:len(path)-1]
		}
		return true
	}
	walk(f.roots)
}

// IDs lists every node id depth-first.
func (f *Forest) IDs() []string {
	var order []string
	f.Walk(func(n *Node, _ []*Node) bool {
		order = append(order, n.ID)
		return true
	})
	return order
}

// Update replaces the first node with id by fn(copy of node) and rebuilds only
// its ancestors. When id is absent the receiver is returned unchanged.
func (f *Forest) Update(id string, fn func(Node) Node) *Forest {
	if f == nil {
		return f
	}
	roots, changed := updateIn(f.roots, id, fn)
	if !changed {
		return f
	}
	return &Forest{roots: roots}
}

func updateIn(nodes []*Node, id string, fn func(Node) Node) ([]*Node, bool) {
	for i, n := range nodes {
		var replacement *Node
		if n.ID == id {
			next := fn(*n)
			replacement = &next
		} else if len(n.Children) > 0 {
			children, changed := updateIn(n.Children, id, fn)
			if !changed {
				continue
			}
			next := *n
			next.Children = children
			replacement = &next
		} else {
			continue
		}
		out := make([]*Node, len(nodes))
		copy(out, nodes)
		out[i] = replacement
		return out, true
	}
	return nodes, false
}

// UpdateAll is Update applied to every node with id, for records that appear
// under more than one container.
func (f *Forest) UpdateAll(id string, fn func(Node) Node) *Forest {
	if f == nil {
		return f
	}
	roots, changed := updateAllIn(f.roots, id, fn)
	if !changed {
		return f
	}
	return &Forest{roots: roots}
}

func updateAllIn(nodes []*Node, id string, fn func(Node) Node) ([]*Node, bool) {
	var out []*Node
	for i, n := range nodes {
		next := *n
		changed := false
		if len(n.Children) > 0 {
			if children, ok := updateAllIn(n.Children, id, fn); ok {
				next.Children = children
				changed = true
			}
		}
		if n.ID == id {
			next = fn(next)
			changed = true
		}
		if !changed {
			continue
		}
		if out == nil {
			out = make([]*Node, len(nodes))
			copy(out, nodes)
		}
		out[i] = &next
	}
	if out == nil {
		return nodes, false
	}
	return out, true
}

// Row is one visible line of the forest.
type Row struct {
	Node  *Node
	Depth int
	// Last is true when the node is the final child of its parent.
	Last bool
}

// Visible flattens the forest into the rows a renderer shows: every root, and
// the children of every open node.
func (f *Forest) Visible() []Row {
	if f == nil {
		return nil
	}
	var rows []Row
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for i, n := range nodes {
			rows = append(rows, Row{Node: n, Depth: depth, Last: i == len(nodes)-1})
			if n.Open && len(n.Children) > 0 {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(f.roots, 0)
	return rows
}

// CanAdopt checks that none of childIDs is parentID or one of its ancestors.
func (f *Forest) CanAdopt(parentID string, childIDs []string) error {
	ancestors, ok := f.AncestorIDs(parentID)
	if !ok {
		return nil
	}
	invalid := make(map[string]struct{}, len(ancestors)+1)
	invalid[parentID] = struct{}{}
	for _, id := range ancestors {
		invalid[id] = struct{}{}
	}
	for _, id := range childIDs {
		if _, bad := invalid[id]; bad {
			return ErrCycle
		}
	}
	return nil
}
