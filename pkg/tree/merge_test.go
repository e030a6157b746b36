package tree

import (
	"encoding/json"
	"reflect"
	"testing"

	"tableflip.dev/stow/pkg/assoc"
	"tableflip.dev/stow/pkg/item"
)

func decode(t *testing.T, payload string) item.Record {
	t.Helper()
	var r item.Record
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	return r
}

func TestMergeDataOverlaysPresentFields(t *testing.T) {
	current := decode(t, `{"id":"A","name":"Box","slug":"box","associations":1,"containments":["B","C"],"shelf":"top"}`)
	incoming := decode(t, `{"id":"A","name":"Crate","children":[{"id":"B"}],"bin":4}`)

	got := MergeData(current, incoming)
	if got.Name != "Crate" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.Slug != "box" || got.Associations != assoc.Containment {
		t.Fatalf("absent fields overwritten: %#v", got)
	}
	if !reflect.DeepEqual(got.Containments, []string{"B", "C"}) {
		t.Fatalf("containments lost: %#v", got.Containments)
	}
	if got.Children != nil {
		t.Fatal("nested children must be stripped")
	}
	if string(got.Extra["shelf"]) != `"top"` || string(got.Extra["bin"]) != "4" {
		t.Fatalf("extra merge wrong: %v", got.Extra)
	}
}

func TestMergeDataIdempotent(t *testing.T) {
	current := decode(t, `{"id":"A","name":"Box","containments":["B"]}`)
	incoming := decode(t, `{"id":"A","name":"Crate","is_deleted":true,"containments":[],"x":1}`)
	once := MergeData(current, incoming)
	twice := MergeData(once, incoming)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\n%#v\n%#v", once, twice)
	}
}

func TestMergeKeepsChildren(t *testing.T) {
	f := NewForest(node("A", node("B"), node("C")))
	before := f.Find("A")
	f2 := f.Update("A", Merge(item.Record{ID: "A", Name: "Crate", Children: []item.Record{{ID: "Z"}}}))
	after := f2.Find("A")
	if after.Data.Name != "Crate" {
		t.Fatalf("name = %q", after.Data.Name)
	}
	if len(after.Children) != len(before.Children) {
		t.Fatalf("children count changed: %d -> %d", len(before.Children), len(after.Children))
	}
	for i := range before.Children {
		if before.Children[i] != after.Children[i] {
			t.Fatalf("child %d lost identity", i)
		}
	}
}
