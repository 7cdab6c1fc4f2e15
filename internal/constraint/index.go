// internal/constraint/index.go
//
// Bitset index over one tier of the word list.
//
// Words are represented by their position in the tier. For every position
// and letter there is a set of words with that letter at that position, and
// for every letter a ladder of sets by minimum occurrence count:
//
//	letters[2]['E'-'A'] words whose third letter is E
//	counts['E'-'A'][1]  words with two or more Es
//
// Filtering a row is then a handful of intersections and differences.
package constraint

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

const wordLen = board.WordLength

// Tier selects which partitions seed the candidate set.
type Tier int

const (
	// Solutions is the default: only words that can be the answer.
	Solutions Tier = iota
	// Dictionary holds valid guesses that are never answers.
	Dictionary
	// All is solutions followed by dictionary, each candidate labelled.
	All
)

func (t Tier) String() string {
	switch t {
	case Dictionary:
		return "dictionary"
	case All:
		return "all"
	}
	return "solutions"
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier accepts the tier names; empty means Solutions.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "solutions", "solution", "wordle":
		return Solutions, nil
	case "dictionary", "dict":
		return Dictionary, nil
	case "all":
		return All, nil
	}
	return Solutions, fmt.Errorf("constraint: unknown tier %q", s)
}

// Index is immutable once built and may be shared by many engines.
type Index struct {
	tier    Tier
	words   []string
	labels  []words.Label
	full    *bitset.BitSet
	letters [wordLen][26]*bitset.BitSet
	counts  [26][wordLen]*bitset.BitSet
}

// NewIndex builds the index for one tier of list.
func NewIndex(list *words.List, tier Tier) *Index {
	var ws []string
	switch tier {
	case Dictionary:
		ws = list.Dictionary
	case All:
		ws = list.All()
	default:
		ws = list.Solutions
	}

	size := uint(len(ws))
	ix := &Index{
		tier:   tier,
		words:  ws,
		labels: make([]words.Label, len(ws)),
		full:   bitset.New(size).FlipRange(0, size),
	}
	for p := 0; p < wordLen; p++ {
		for c := 0; c < 26; c++ {
			ix.letters[p][c] = bitset.New(size)
		}
	}
	for c := 0; c < 26; c++ {
		for k := 0; k < wordLen; k++ {
			ix.counts[c][k] = bitset.New(size)
		}
	}

	for i, w := range ws {
		ix.labels[i] = list.Label(w)
		var seen [26]int
		for p := 0; p < wordLen; p++ {
			c := w[p] - 'A'
			ix.letters[p][c].Set(uint(i))
			ix.counts[c][seen[c]].Set(uint(i))
			seen[c]++
		}
	}
	return ix
}

// Tier returns the tier the index was built for.
func (ix *Index) Tier() Tier { return ix.tier }

// Len returns the number of indexed words.
func (ix *Index) Len() int { return len(ix.words) }

// candidates lists the words in s in index order.
func (ix *Index) candidates(s *bitset.BitSet) []Candidate {
	out := make([]Candidate, 0, s.Count())
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		out = append(out, Candidate{Word: ix.words[i], Label: ix.labels[i]})
	}
	return out
}

// Cheat keeps words containing every letter of yes and none of no,
// ignoring positions.
func (ix *Index) Cheat(yes, no string) ([]Candidate, error) {
	s := ix.full.Clone()
	for _, r := range strings.ToUpper(yes) {
		c, err := letterIndex(r)
		if err != nil {
			return nil, err
		}
		s.InPlaceIntersection(ix.counts[c][0])
	}
	for _, r := range strings.ToUpper(no) {
		c, err := letterIndex(r)
		if err != nil {
			return nil, err
		}
		s.InPlaceDifference(ix.counts[c][0])
	}
	return ix.candidates(s), nil
}

// Cheat runs a positionless filter over the solution list.
func Cheat(list *words.List, yes, no string) ([]Candidate, error) {
	return NewIndex(list, Solutions).Cheat(yes, no)
}

func letterIndex(r rune) (int, error) {
	if r < 'A' || r > 'Z' {
		return 0, fmt.Errorf("constraint: %q is not a letter", r)
	}
	return int(r - 'A'), nil
}
