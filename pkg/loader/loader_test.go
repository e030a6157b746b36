package loader

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/remote/remotetest"
	"tableflip.dev/stow/pkg/tree"
)

func TestFilterContainments(t *testing.T) {
	tests := map[string]struct {
		declared []string
		invalid  []string
		want     []string
	}{
		"empty": {
			want: []string{},
		},
		"blanks dropped": {
			declared: []string{"", " B ", "  ", "C"},
			want:     []string{"B", "C"},
		},
		"invalid dropped": {
			declared: []string{"A", "B", "R", "C"},
			invalid:  []string{"A", "R"},
			want:     []string{"B", "C"},
		},
		"duplicates keep first": {
			declared: []string{"C", "B", "C", " B"},
			want:     []string{"C", "B"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			invalid := map[string]struct{}{}
			for _, id := range tc.invalid {
				invalid[id] = struct{}{}
			}
			got := FilterContainments(tc.declared, invalid)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("FilterContainments(%q) = %q, want %q", tc.declared, got, tc.want)
			}
		})
	}
}

func TestInvalidIncludesSelf(t *testing.T) {
	set := Invalid("B", []string{"A", "R"})
	for _, id := range []string{"A", "B", "R"} {
		if _, ok := set[id]; !ok {
			t.Fatalf("Invalid missing %q", id)
		}
	}
	if len(set) != 3 {
		t.Fatalf("len = %d", len(set))
	}
}

func cycleService() *remotetest.Service {
	return remotetest.New().
		Put(
			remotetest.Item("A", "B", "C"),
			remotetest.Item("B", "A"),
			remotetest.Item("C"),
		).
		SetRoots("A")
}

func TestLoadExcludesAncestors(t *testing.T) {
	svc := cycleService()
	l := New(svc, WithParallel(2))

	exp, err := l.Load(context.Background(), "A", nil)
	if err != nil {
		t.Fatalf("Load(A): %v", err)
	}
	if got := exp.ChildIDs(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("children of A = %q", got)
	}

	exp, err = l.Load(context.Background(), "B", []string{"A"})
	if err != nil {
		t.Fatalf("Load(B): %v", err)
	}
	if len(exp.Children) != 0 {
		t.Fatalf("children of B = %q, want none", exp.ChildIDs())
	}
	if !reflect.DeepEqual(exp.Excluded, []string{"A"}) {
		t.Fatalf("excluded = %q", exp.Excluded)
	}
}

func TestLoadExcludesSelf(t *testing.T) {
	svc := remotetest.New().Put(remotetest.Item("A", "A", "B"), remotetest.Item("B"))
	exp, err := New(svc).Load(context.Background(), "A", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := exp.ChildIDs(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("children = %q", got)
	}
}

func TestLoadChildrenAreUnexpanded(t *testing.T) {
	svc := cycleService()
	exp, err := New(svc).Load(context.Background(), "A", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, c := range exp.Children {
		if c.Open || c.HasLoadedChildren || c.Children != nil {
			t.Fatalf("child %s was expanded: %+v", c.ID, c)
		}
	}
	b := exp.Children[0]
	if !b.Expandable() {
		t.Fatalf("B declares children and should be expandable")
	}
	if exp.Children[1].Expandable() {
		t.Fatalf("C declares nothing and should be a leaf")
	}
	if n := svc.Calls(remotetest.OpFetch); n != 3 {
		t.Fatalf("fetch calls = %d, want 3", n)
	}
}

func TestLoadSkipsMissingChildren(t *testing.T) {
	svc := remotetest.New().Put(remotetest.Item("A", "gone", "C"), remotetest.Item("C"))
	exp, err := New(svc).Load(context.Background(), "A", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := exp.ChildIDs(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("children = %q", got)
	}
	if !reflect.DeepEqual(exp.Missing, []string{"gone"}) {
		t.Fatalf("missing = %q", exp.Missing)
	}
}

func TestLoadChildFailureAborts(t *testing.T) {
	svc := cycleService()
	svc.Fail(remotetest.OpFetch, "C", remotetest.ErrBoom)
	_, err := New(svc).Load(context.Background(), "A", nil)
	if !errors.Is(err, remotetest.ErrBoom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestLoadParentFailure(t *testing.T) {
	svc := cycleService()
	svc.Fail(remotetest.OpFetch, "A", remotetest.ErrBoom)
	if _, err := New(svc).Load(context.Background(), "A", nil); !errors.Is(err, remotetest.ErrBoom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestLoadKeepsDeclaredOrder(t *testing.T) {
	ids := []string{"K", "J", "I", "H", "G", "F", "E", "D"}
	svc := remotetest.New().Put(remotetest.Item("P", ids...))
	for _, id := range ids {
		svc.Put(remotetest.Item(id))
	}
	exp, err := New(svc, WithParallel(3)).Load(context.Background(), "P", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := exp.ChildIDs(); !reflect.DeepEqual(got, ids) {
		t.Fatalf("children = %q, want %q", got, ids)
	}
}

func TestToggleTransitions(t *testing.T) {
	leaf := tree.NewNode(remotetest.Item("A"))
	if action, _ := Toggle(leaf); action != Nothing {
		t.Fatalf("leaf toggle = %s", action)
	}

	n := tree.NewNode(remotetest.Item("A", "B"))
	action, fn := Toggle(n)
	if action != Fetch {
		t.Fatalf("collapsed toggle = %s", action)
	}
	loading := fn(*n)
	if !loading.LoadingChildren {
		t.Fatalf("node not marked loading")
	}
	if action, _ := Toggle(&loading); action != Nothing {
		t.Fatalf("toggle while loading = %s", action)
	}

	child := tree.NewNode(remotetest.Item("B"))
	loaded := Commit(Expansion{ID: "A", Parent: item.Record{ID: "A", Name: "Box"}, Children: []*tree.Node{child}})(loading)
	if !loaded.Open || !loaded.HasLoadedChildren || loaded.LoadingChildren {
		t.Fatalf("commit state = %+v", loaded)
	}
	if loaded.Data.Name != "Box" || loaded.Children[0] != child {
		t.Fatalf("commit data = %+v", loaded)
	}

	action, fn = Toggle(&loaded)
	if action != Collapse {
		t.Fatalf("open toggle = %s", action)
	}
	closed := fn(loaded)
	if closed.Open || len(closed.Children) != 1 {
		t.Fatalf("collapse discarded children: %+v", closed)
	}
	if action, _ := Toggle(&closed); action != Reopen {
		t.Fatalf("reopen toggle = %s", action)
	}
}

func TestFailResetsForRetry(t *testing.T) {
	n := MarkLoading(*tree.NewNode(remotetest.Item("A", "B")))
	failed := Fail(remotetest.ErrBoom)(n)
	if failed.LoadingChildren || failed.HasLoadedChildren || failed.Open {
		t.Fatalf("fail state = %+v", failed)
	}
	if failed.LoadErr == "" {
		t.Fatalf("LoadErr not recorded")
	}
	if action, _ := Toggle(&failed); action != Fetch {
		t.Fatalf("retry toggle = %s", action)
	}
}
