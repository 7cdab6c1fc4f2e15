// internal/board/evaluate.go
//
// Row construction helpers.
// Responsibilities:
//   - Evaluate: score a guess against a known answer (two-pass algorithm),
//     producing the row the puzzle would have displayed.
//   - NewRow / ParseRow: build rows from typed input for manual correction
//     of a misread screenshot.
//
// Notes:
//   - Words are validated to exactly WordLength letters A–Z (case-insensitive).
package board

import (
	"fmt"
	"strings"
)

// Evaluate implements the standard two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches Green.
//   - Count remaining (non-green) answer letters.
//
// Pass 2:
//   - For each non-green guess letter, left to right: if a remaining count
//     exists mark Yellow and decrement; otherwise mark Gray.
//
// This yields the display semantics the constraint engine relies on for
// repeated letters: a Gray copy of a letter that is also Green/Yellow in the
// same row means "no further occurrences".
func Evaluate(guess, answer string) (Row, error) {
	g, err := normalizeWord(guess)
	if err != nil {
		return Row{}, err
	}
	a, err := normalizeWord(answer)
	if err != nil {
		return Row{}, err
	}

	var row Row
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		row[i] = Tile{Index: i, Letter: rune(g[i])}
		if g[i] == a[i] {
			row[i].Color = Green
		} else {
			counts[idx(a[i])]++
		}
	}

	for i := 0; i < WordLength; i++ {
		if row[i].Color == Green {
			continue
		}
		j := idx(g[i])
		if counts[j] > 0 {
			row[i].Color = Yellow
			counts[j]--
		} else {
			row[i].Color = Gray
		}
	}
	return row, nil
}

// NewRow builds a row from a guess and explicit colors.
func NewRow(guess string, colors [WordLength]Color) (Row, error) {
	g, err := normalizeWord(guess)
	if err != nil {
		return Row{}, err
	}
	var row Row
	for i := 0; i < WordLength; i++ {
		if !colors[i].Valid() {
			return Row{}, fmt.Errorf("%w: position %d is %s", ErrInvalidColorCodes, i, colors[i])
		}
		row[i] = Tile{Index: i, Letter: rune(g[i]), Color: colors[i]}
	}
	return row, nil
}

// ParseRow builds a row from a guess and a compact pattern such as "GYBBG"
// (G=green, Y=yellow, B/X/-=gray; case-insensitive).
func ParseRow(guess, pattern string) (Row, error) {
	pattern = strings.TrimSpace(pattern)
	if len(pattern) != WordLength {
		return Row{}, fmt.Errorf("%w: %q must have %d codes", ErrInvalidColorCodes, pattern, WordLength)
	}
	var colors [WordLength]Color
	for i := 0; i < WordLength; i++ {
		c, err := ParseColor(pattern[i : i+1])
		if err != nil {
			return Row{}, fmt.Errorf("%w: %v", ErrInvalidColorCodes, err)
		}
		colors[i] = c
	}
	return NewRow(guess, colors)
}

// normalizeWord uppercases and validates a WordLength A–Z word.
func normalizeWord(w string) (string, error) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) != WordLength || !isAlpha(w) {
		return "", fmt.Errorf("%w: %q", ErrInvalidGuess, w)
	}
	return w, nil
}

// idx maps an uppercase ASCII letter to 0..25.
func idx(b byte) int { return int(b - 'A') }

// isAlpha checks that a string consists only of uppercase A–Z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
