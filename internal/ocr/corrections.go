package ocr

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Corrections maps characters OCR commonly confuses onto the intended letter.
// Keys are compared after uppercasing.
type Corrections map[rune]rune

// DefaultCorrections covers the confusions seen on bold sans-serif tiles.
func DefaultCorrections() Corrections {
	return Corrections{
		'|': 'I',
		'0': 'O',
		'1': 'I',
		'!': 'I',
		'5': 'S',
		'8': 'B',
		'2': 'Z',
		'$': 'S',
	}
}

// Merge returns a copy of c with extra applied on top.
func (c Corrections) Merge(extra Corrections) Corrections {
	out := make(Corrections, len(c)+len(extra))
	maps.Copy(out, c)
	maps.Copy(out, extra)
	return out
}

// ParseCorrections reads a config map such as {"|": "I", "0": "O"}.
// Each key and value must be a single character.
func ParseCorrections(m map[string]string) (Corrections, error) {
	out := make(Corrections, len(m))
	for k, v := range m {
		if utf8.RuneCountInString(k) != 1 || utf8.RuneCountInString(v) != 1 {
			return nil, fmt.Errorf("ocr: correction %q -> %q must map one character to one character", k, v)
		}
		from, _ := utf8.DecodeRuneInString(k)
		to, _ := utf8.DecodeRuneInString(v)
		out[unicode.ToUpper(from)] = unicode.ToUpper(to)
	}
	return out, nil
}

// Letter reduces raw OCR output to one uppercase letter A-Z.
// The first non-space character is taken, uppercased and corrected.
func (c Corrections) Letter(text string) (rune, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrNoText
	}
	r, _ := utf8.DecodeRuneInString(text)
	r = unicode.ToUpper(r)
	if fixed, ok := c[r]; ok {
		r = fixed
	}
	if r < 'A' || r > 'Z' {
		return 0, fmt.Errorf("%w: %q", ErrNotLetter, text)
	}
	return r, nil
}
