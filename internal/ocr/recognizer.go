// Package ocr turns a cropped glyph image into text.
//
// Recognizer is the seam between the vision pipeline and an OCR engine;
// Tesseract is the production implementation and tests use RecognizerFunc.
package ocr

import (
	"context"
	"errors"
)

var (
	ErrNoText    = errors.New("ocr: no text recognized")
	ErrNotLetter = errors.New("ocr: not a letter")
)

// Recognizer returns the raw text found in a PNG-encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// RecognizerFunc adapts a plain function to Recognizer.
type RecognizerFunc func(ctx context.Context, png []byte) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, png []byte) (string, error) {
	return f(ctx, png)
}
