package assoc

import (
	"reflect"
	"testing"
)

func TestWordRoundTrip(t *testing.T) {
	for _, bit := range []Mask{Containment, Related, Similar, Merge} {
		word := BitToWord(bit)
		if word == "" {
			t.Fatalf("bit %d has no word", bit)
		}
		if got := WordToBit(word); got != bit {
			t.Fatalf("WordToBit(%q) = %d, want %d", word, got, bit)
		}
	}
}

func TestBitToWordRejectsCompositeAndUnknown(t *testing.T) {
	for _, v := range []Mask{0, Containment | Related, 16, -1} {
		if got := BitToWord(v); got != "" {
			t.Fatalf("BitToWord(%d) = %q, want empty", v, got)
		}
	}
}

func TestWordToBitNormalizes(t *testing.T) {
	tests := map[string]Mask{
		"  Related ":  Related,
		"SIMILAR":     Similar,
		"merge":       Merge,
		"":            0,
		"   ":         0,
		"contained":   0,
		"containment": Containment,
	}
	for in, want := range tests {
		if got := WordToBit(in); got != want {
			t.Fatalf("WordToBit(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestGlyphs(t *testing.T) {
	if got := Glyphs(0); len(got) != 0 {
		t.Fatalf("Glyphs(0) = %v, want empty", got)
	}
	got := Glyphs(Merge | Containment | 64)
	want := []string{"▣", "⇉"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Glyphs = %v, want %v", got, want)
	}
	if got := Glyphs(Known); len(got) != 4 {
		t.Fatalf("Glyphs(Known) len = %d, want 4", len(got))
	}
}

func TestParseAndString(t *testing.T) {
	m := Parse("related, merge", "bogus", "Similar")
	if m != Related|Merge|Similar {
		t.Fatalf("Parse = %d", m)
	}
	if s := m.String(); s != "related,similar,merge" {
		t.Fatalf("String = %q", s)
	}
	if !m.Has(Related) || m.Has(Containment) || m.Has(0) {
		t.Fatalf("Has mismatch for %d", m)
	}
}

func TestTableIsACopy(t *testing.T) {
	tbl := Table()
	tbl[0].Symbol = "x"
	if Glyphs(Containment)[0] == "x" {
		t.Fatal("Table exposed internal storage")
	}
}
