package constraint

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

// ErrDuplicateLetterConflict matches every *DuplicateLetterConflict.
var ErrDuplicateLetterConflict = errors.New("duplicate letter conflict")

// DuplicateLetterConflict reports a row whose feedback cannot be satisfied
// by any word, either on its own or together with earlier rows.
type DuplicateLetterConflict struct {
	Letter rune
	Row    int
	Reason string
}

func (e *DuplicateLetterConflict) Error() string {
	return fmt.Sprintf("duplicate letter conflict: %c in row %d: %s", e.Letter, e.Row, e.Reason)
}

func (e *DuplicateLetterConflict) Unwrap() error { return ErrDuplicateLetterConflict }

// Candidate is a surviving word and the partition it came from.
type Candidate struct {
	Word  string      `json:"word"`
	Label words.Label `json:"label"`
}

// Knowledge summarizes what the applied rows have established.
type Knowledge struct {
	Pattern string `json:"pattern"`
	Present string `json:"present"`
	Absent  string `json:"absent"`
}

// Engine narrows a candidate set one guess row at a time.
// The set only ever shrinks; a rejected row leaves it untouched.
type Engine struct {
	ix   *Index
	set  *bitset.BitSet
	rows int

	fixed    [wordLen]byte // letter+1 known at each position, 0 unknown
	notAt    [wordLen][26]bool
	minCount [26]int
	maxCount [26]int
}

// New returns an engine seeded with every word in the tier.
func New(list *words.List, tier Tier) *Engine {
	return NewWithIndex(NewIndex(list, tier))
}

// NewWithIndex seeds an engine from a prebuilt index.
func NewWithIndex(ix *Index) *Engine {
	e := &Engine{ix: ix, set: ix.full.Clone()}
	for c := range e.maxCount {
		e.maxCount[c] = wordLen
	}
	return e
}

// rowFacts is the per-letter reading of one row.
type rowFacts struct {
	present [26]int // green + yellow copies
	gray    [26]bool
}

// Apply filters the candidate set by one row.
//
// Green fixes the letter at its position. Yellow requires the letter
// elsewhere. Gray means no occurrences at all, unless the same letter is
// green or yellow in this row; then it caps the count at the number of
// green and yellow copies and excludes the letter at the gray position only.
//
// The row is validated first. Unresolved tiles give *board.IncompleteRowError
// and contradictions give *DuplicateLetterConflict; in both cases the
// engine is unchanged.
func (e *Engine) Apply(row board.Row) error {
	f, err := e.check(row)
	if err != nil {
		return err
	}

	cs := e.ix.full.Clone()
	for p, t := range row {
		c := int(t.Letter - 'A')
		switch t.Color {
		case board.Green:
			cs.InPlaceIntersection(e.ix.letters[p][c])
		case board.Yellow:
			cs.InPlaceDifference(e.ix.letters[p][c])
		case board.Gray:
			if f.present[c] == 0 {
				cs.InPlaceDifference(e.ix.counts[c][0])
			} else {
				cs.InPlaceDifference(e.ix.letters[p][c])
			}
		}
	}
	for c := 0; c < 26; c++ {
		k := f.present[c]
		if k == 0 {
			continue
		}
		cs.InPlaceIntersection(e.ix.counts[c][k-1])
		if f.gray[c] && k < wordLen {
			cs.InPlaceDifference(e.ix.counts[c][k])
		}
	}

	e.set.InPlaceIntersection(cs)
	e.learn(row, f)
	e.rows++
	return nil
}

// check validates row on its own and against earlier rows.
func (e *Engine) check(row board.Row) (rowFacts, error) {
	var f rowFacts

	var bad []*board.TileError
	for _, t := range row {
		switch {
		case !t.Color.Valid():
			bad = append(bad, &board.TileError{Index: t.Index, Kind: board.KindClassificationFailed})
		case t.Letter < 'A' || t.Letter > 'Z':
			bad = append(bad, &board.TileError{Index: t.Index, Kind: board.KindRecognitionFailed})
		}
	}
	if len(bad) > 0 {
		return f, &board.IncompleteRowError{Row: e.rows, Tiles: bad}
	}

	// Scoring hands out yellows left to right before any gray, so a gray
	// copy followed by a yellow copy of the same letter cannot happen.
	for _, t := range row {
		c := t.Letter - 'A'
		switch t.Color {
		case board.Green:
			f.present[c]++
		case board.Yellow:
			if f.gray[c] {
				return f, e.conflict(t.Letter, "gray copy precedes a yellow copy")
			}
			f.present[c]++
		case board.Gray:
			f.gray[c] = true
		}
	}

	for p, t := range row {
		c := t.Letter - 'A'
		fixed := e.fixed[p]
		if t.Color == board.Green {
			if fixed != 0 && fixed-1 != byte(c) {
				return f, e.conflict(t.Letter, fmt.Sprintf("position %d is already %c", p+1, 'A'+rune(fixed-1)))
			}
			if e.notAt[p][c] {
				return f, e.conflict(t.Letter, fmt.Sprintf("ruled out at position %d by an earlier row", p+1))
			}
			continue
		}
		if fixed != 0 && fixed-1 == byte(c) {
			return f, e.conflict(t.Letter, fmt.Sprintf("already green at position %d", p+1))
		}
	}

	for c := 0; c < 26; c++ {
		lo := max(e.minCount[c], f.present[c])
		hi := e.maxCount[c]
		if f.gray[c] {
			hi = min(hi, f.present[c])
		}
		if lo > hi {
			return f, e.conflict('A'+rune(c), fmt.Sprintf("needs at least %d but at most %d", lo, hi))
		}
	}
	return f, nil
}

// learn records what a committed row established.
func (e *Engine) learn(row board.Row, f rowFacts) {
	for p, t := range row {
		c := t.Letter - 'A'
		if t.Color == board.Green {
			e.fixed[p] = byte(c) + 1
		} else {
			e.notAt[p][c] = true
		}
	}
	for c := 0; c < 26; c++ {
		e.minCount[c] = max(e.minCount[c], f.present[c])
		if f.gray[c] {
			e.maxCount[c] = min(e.maxCount[c], f.present[c])
		}
	}
}

func (e *Engine) conflict(letter rune, reason string) error {
	return &DuplicateLetterConflict{Letter: letter, Row: e.rows, Reason: reason}
}

// Replay applies rows in guess order and stops at the first error. The set
// keeps whatever the rows before the failing one established.
func (e *Engine) Replay(b board.Board) error {
	for i, row := range b.Rows {
		if err := e.Apply(row); err != nil {
			return fmt.Errorf("replay row %d: %w", i, err)
		}
	}
	return nil
}

// Candidates lists the surviving words in list order.
func (e *Engine) Candidates() []Candidate { return e.ix.candidates(e.set) }

// Words lists the surviving words without labels.
func (e *Engine) Words() []string {
	cs := e.Candidates()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Word
	}
	return out
}

// Len returns the number of surviving words.
func (e *Engine) Len() int { return int(e.set.Count()) }

// Rows returns the number of rows applied.
func (e *Engine) Rows() int { return e.rows }

// Tier returns the tier the engine was seeded from.
func (e *Engine) Tier() Tier { return e.ix.tier }

// Clone returns an independent copy sharing the immutable index.
func (e *Engine) Clone() *Engine {
	c := *e
	c.set = e.set.Clone()
	return &c
}

// Knowledge reports the fixed positions and the letters known present or absent.
func (e *Engine) Knowledge() Knowledge {
	pattern := make([]byte, wordLen)
	for p, f := range e.fixed {
		pattern[p] = '?'
		if f != 0 {
			pattern[p] = 'A' + f - 1
		}
	}
	var present, absent []byte
	for c := 0; c < 26; c++ {
		switch {
		case e.minCount[c] > 0:
			present = append(present, byte('A'+c))
		case e.maxCount[c] == 0:
			absent = append(absent, byte('A'+c))
		}
	}
	return Knowledge{Pattern: string(pattern), Present: string(present), Absent: string(absent)}
}

// Filter seeds an engine from list and replays the board. On error the
// candidates reflect the rows before the failing one.
func Filter(list *words.List, tier Tier, b board.Board) ([]Candidate, error) {
	e := New(list, tier)
	err := e.Replay(b)
	return e.Candidates(), err
}
