// Package assoc encodes the relationship categories attached to an item as a
// small bitmask, and maps each bit to a word and a display glyph.
package assoc

import "strings"

// Mask is a set of association bits. Bits outside the known set are carried
// but ignored by every lookup.
type Mask int

const (
	Containment Mask = 1 << iota
	Related
	Similar
	Merge
)

// Known is the union of every recognized bit.
const Known = Containment | Related | Similar | Merge

// Glyph describes how a single association bit is spelled and drawn.
type Glyph struct {
	Bit     Mask
	Word    string
	Symbol  string
	Meaning string
}

// table is ordered by bit position; Glyphs and Words rely on that order.
var table = [...]Glyph{
	{Bit: Containment, Word: "containment", Symbol: "▣", Meaning: "stored inside another item"},
	{Bit: Related, Word: "related", Symbol: "↔", Meaning: "related item"},
	{Bit: Similar, Word: "similar", Symbol: "≈", Meaning: "similar item"},
	{Bit: Merge, Word: "merge", Symbol: "⇉", Meaning: "merge candidate"},
}

// Table returns a copy of the legend in bit order.
func Table() []Glyph {
	out := make([]Glyph, len(table))
	copy(out, table[:])
	return out
}

// BitToWord returns the word for a single recognized bit, or "".
func BitToWord(bit Mask) string {
	for _, g := range table {
		if g.Bit == bit {
			return g.Word
		}
	}
	return ""
}

// WordToBit returns the bit named by word. Matching ignores case and
// surrounding space; unknown words map to 0.
func WordToBit(word string) Mask {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return 0
	}
	for _, g := range table {
		if g.Word == word {
			return g.Bit
		}
	}
	return 0
}

// Glyphs returns one symbol per recognized bit set in value, in bit order.
func Glyphs(value Mask) []string {
	var out []string
	for _, g := range table {
		if value&g.Bit != 0 {
			out = append(out, g.Symbol)
		}
	}
	return out
}

// Words returns one word per recognized bit set in value, in bit order.
func Words(value Mask) []string {
	var out []string
	for _, g := range table {
		if value&g.Bit != 0 {
			out = append(out, g.Word)
		}
	}
	return out
}

// Parse ORs together the bits named by words. Each argument may itself be a
// comma separated list.
func Parse(words ...string) Mask {
	var m Mask
	for _, w := range words {
		for _, part := range strings.Split(w, ",") {
			m |= WordToBit(part)
		}
	}
	return m
}

// Has reports whether every bit of bit is set.
func (m Mask) Has(bit Mask) bool {
	return bit != 0 && m&bit == bit
}

// String joins the recognized words with commas.
func (m Mask) String() string {
	return strings.Join(Words(m), ",")
}
