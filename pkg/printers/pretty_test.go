package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/stow/pkg/assoc"
	"tableflip.dev/stow/pkg/item"
	"tableflip.dev/stow/pkg/tree"
)

func init() {
	color.NoColor = true
}

func TestForestGuides(t *testing.T) {
	c := tree.NewNode(item.Record{ID: "C", Name: "Cup", Containments: []string{}})
	d := tree.NewNode(item.Record{ID: "D", Name: "Dish", Deleted: true, Containments: []string{}})
	b := tree.NewNode(item.Record{ID: "B", Name: "Box", Containments: []string{"C"}})
	b.Open, b.HasLoadedChildren, b.Children = true, true, []*tree.Node{c}
	a := tree.NewNode(item.Record{ID: "A", Name: "Attic", Associations: assoc.Containment, Containments: []string{"B", "D"}})
	a.Open, a.HasLoadedChildren, a.Children = true, true, []*tree.Node{b, d}
	z := tree.NewNode(item.Record{ID: "Z", Name: "Zed"})

	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Forest(tree.NewForest(a, z))

	want := []string{
		"▾ Attic ▣",
		"├─ ▾ Box",
		"│  └─ · Cup",
		"└─ · Dish (deleted)",
		"▸ Zed",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(got), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestForestEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Forest(tree.NewForest())
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none marker, got %q", buf.String())
	}
}

func TestRecordTable(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Record(item.Record{ID: "7", Name: "Drill", Associations: assoc.Related | assoc.Merge, Pinned: true}, "https://example.test/items/7")

	out := buf.String()
	for _, want := range []string{"Drill", "related, merge", "↔⇉", "unknown", "https://example.test/items/7"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
