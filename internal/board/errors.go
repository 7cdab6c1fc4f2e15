package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for board extraction. Match with errors.Is.
var (
	ErrBoardDetection    = errors.New("board detection failed")
	ErrIncompleteRow     = errors.New("incomplete row")
	ErrClassification    = errors.New("tile classification failed")
	ErrAmbiguousColor    = errors.New("tile classification ambiguous")
	ErrRecognition       = errors.New("tile recognition failed")
	ErrInvalidGuess      = errors.New("invalid guess")
	ErrInvalidColorCodes = errors.New("invalid color pattern")
)

// DetectionError reports a screenshot whose tile count cannot form a board.
type DetectionError struct {
	Found int
}

func (e *DetectionError) Error() string {
	if e.Found == 0 {
		return "board detection failed: no tiles found"
	}
	return fmt.Sprintf("board detection failed: found %d tiles, not a multiple of %d", e.Found, WordLength)
}

func (e *DetectionError) Unwrap() error { return ErrBoardDetection }

// TileErrorKind classifies per-tile failures.
type TileErrorKind int

const (
	KindClassificationAmbiguous TileErrorKind = iota
	KindClassificationFailed
	KindRecognitionFailed
)

func (k TileErrorKind) String() string {
	switch k {
	case KindClassificationAmbiguous:
		return "classification_ambiguous"
	case KindClassificationFailed:
		return "classification_failed"
	case KindRecognitionFailed:
		return "recognition_failed"
	}
	return "unknown"
}

// Fatal reports whether the tile cannot enter a row.
// Ambiguous classification resolves by priority and is only a warning.
func (k TileErrorKind) Fatal() bool { return k != KindClassificationAmbiguous }

// TileError identifies the offending tile so a caller can correct it.
type TileError struct {
	Index int
	Kind  TileErrorKind
	Err   error
}

func (e *TileError) Error() string {
	msg := fmt.Sprintf("tile %d: %s", e.Index, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// MarshalJSON renders {"index":7,"kind":"recognition_failed","error":"..."}.
func (e *TileError) MarshalJSON() ([]byte, error) {
	out := struct {
		Index int    `json:"index"`
		Kind  string `json:"kind"`
		Error string `json:"error"`
	}{e.Index, e.Kind.String(), e.Error()}
	return json.Marshal(out)
}

func (e *TileError) Unwrap() error {
	switch e.Kind {
	case KindClassificationAmbiguous:
		return errors.Join(ErrAmbiguousColor, e.Err)
	case KindClassificationFailed:
		return errors.Join(ErrClassification, e.Err)
	default:
		return errors.Join(ErrRecognition, e.Err)
	}
}

// IncompleteRowError is returned when a row cannot be fully resolved.
// Rows before Row remain valid.
type IncompleteRowError struct {
	Row   int          `json:"row"`
	Tiles []*TileError `json:"tiles,omitempty"`
	Count int          `json:"count,omitempty"` // non-zero when the tile count itself was not a multiple of WordLength
}

func (e *IncompleteRowError) Error() string {
	if e.Count != 0 {
		return fmt.Sprintf("incomplete row %d: %d tiles is not a multiple of %d", e.Row, e.Count, WordLength)
	}
	parts := make([]string, 0, len(e.Tiles))
	for _, t := range e.Tiles {
		parts = append(parts, t.Error())
	}
	return fmt.Sprintf("incomplete row %d: %s", e.Row, strings.Join(parts, "; "))
}

func (e *IncompleteRowError) Unwrap() error { return ErrIncompleteRow }
