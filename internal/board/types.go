// internal/board/types.go
//
// Core type definitions for an extracted puzzle board.
// Defines:
//   - Color: per-tile feedback class (gray/yellow/green, or unclassified).
//   - Tile:  one recognized cell (letter + color).
//   - Row:   one guess, always WordLength tiles.
//   - Board: ordered guess history, earliest guess first.

package board

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WordLength is the fixed number of letters per guess.
const WordLength = 5

// Color is the feedback class of a tile.
//
// Values mirror the classic scoring marks:
//   - Gray:   letter has no (further) occurrence in the answer.
//   - Yellow: letter occurs in the answer, but not at this position.
//   - Green:  letter is correct and in the correct position.
//
// Unclassified is never produced by scoring; it marks a tile whose
// color could not be determined from the screenshot.
type Color int

const (
	Unclassified Color = -1
	Gray         Color = 0
	Yellow       Color = 1
	Green        Color = 2
)

// String returns the lowercase name of the color.
func (c Color) String() string {
	switch c {
	case Gray:
		return "gray"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "unclassified"
	}
}

// Code returns the single-character code used in compact row notation
// (B=gray/"black", Y=yellow, G=green, ?=unclassified).
func (c Color) Code() byte {
	switch c {
	case Gray:
		return 'B'
	case Yellow:
		return 'Y'
	case Green:
		return 'G'
	default:
		return '?'
	}
}

// Valid reports whether c is one of the three feedback classes.
func (c Color) Valid() bool { return c == Gray || c == Yellow || c == Green }

// MarshalJSON encodes the color by name.
func (c Color) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// UnmarshalJSON accepts either a name ("green") or the numeric class (2).
func (c *Color) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		parsed, err := ColorFromInt(n)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts color names and single-letter codes.
// "b", "x", "-" and "gray"/"grey"/"black" all map to Gray.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g", "green", "+":
		return Green, nil
	case "y", "yellow", "~":
		return Yellow, nil
	case "b", "x", "-", "gray", "grey", "black":
		return Gray, nil
	}
	return Unclassified, fmt.Errorf("unknown color %q", s)
}

// ColorFromInt maps the numeric class (0,1,2) onto a Color.
func ColorFromInt(n int) (Color, error) {
	c := Color(n)
	if !c.Valid() {
		return Unclassified, fmt.Errorf("unknown color class %d", n)
	}
	return c, nil
}

// Tile is one cell of the board.
// Letter is an uppercase A–Z rune, or 0 when recognition failed.
// Err is set when the tile could not be fully resolved.
type Tile struct {
	Index  int   `json:"index"`
	Letter rune  `json:"-"`
	Color  Color `json:"color"`
	Err    error `json:"-"`
}

// Resolved reports whether the tile has both a letter and a color.
func (t Tile) Resolved() bool {
	return t.Letter >= 'A' && t.Letter <= 'Z' && t.Color.Valid()
}

type tileJSON struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
	Color  Color  `json:"color"`
	Error  string `json:"error,omitempty"`
}

// MarshalJSON renders the letter as a string and flattens Err.
func (t Tile) MarshalJSON() ([]byte, error) {
	out := tileJSON{Index: t.Index, Color: t.Color}
	if t.Letter != 0 {
		out.Letter = string(t.Letter)
	}
	if t.Err != nil {
		out.Error = t.Err.Error()
	}
	return json.Marshal(out)
}

// Row is one full guess, left to right.
type Row [WordLength]Tile

// Word returns the guessed letters; unrecognized tiles render as '?'.
func (r Row) Word() string {
	var b strings.Builder
	for _, t := range r {
		if t.Letter == 0 {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(t.Letter)
	}
	return b.String()
}

// Pattern returns the compact color notation, e.g. "GBBYG".
func (r Row) Pattern() string {
	b := make([]byte, WordLength)
	for i, t := range r {
		b[i] = t.Color.Code()
	}
	return string(b)
}

// Resolved reports whether every tile in the row is resolved.
func (r Row) Resolved() bool {
	for _, t := range r {
		if !t.Resolved() {
			return false
		}
	}
	return true
}

// Solved reports whether every tile is green.
func (r Row) Solved() bool {
	for _, t := range r {
		if t.Color != Green {
			return false
		}
	}
	return true
}

// String renders the row as WORD/PATTERN.
func (r Row) String() string { return r.Word() + "/" + r.Pattern() }

// Board is the ordered guess history for one puzzle.
// Rows are only ever appended.
type Board struct {
	Rows []Row `json:"rows"`
}

// Append adds rows in guess order.
func (b *Board) Append(rows ...Row) { b.Rows = append(b.Rows, rows...) }

// Len returns the number of guesses recorded.
func (b Board) Len() int { return len(b.Rows) }

// Solved reports whether the last recorded guess is all green.
func (b Board) Solved() bool {
	return len(b.Rows) > 0 && b.Rows[len(b.Rows)-1].Solved()
}
