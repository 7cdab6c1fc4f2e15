package vision

import (
	"bytes"
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/ocr"
)

// Glyph isolation thresholds on the masked grayscale tile.
const (
	glyphThresh = 180
	glyphMax    = 255
)

// GlyphImage isolates the letter in r as a PNG: dark glyph on a light
// background, cropped to the region bounds.
func GlyphImage(img gocv.Mat, r Region) ([]byte, error) {
	roi := img.Region(r.Bounds)
	defer roi.Close()
	mask := r.mask()
	defer mask.Close()

	masked := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), roi.Rows(), roi.Cols(), roi.Type())
	defer masked.Close()
	roi.CopyToWithMask(&masked, mask)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(masked, &gray, gocv.ColorRGBToGray)

	bw := gocv.NewMat()
	defer bw.Close()
	gocv.Threshold(gray, &bw, glyphThresh, glyphMax, gocv.ThresholdBinary)

	inv := gocv.NewMat()
	defer inv.Close()
	gocv.BitwiseNot(bw, &inv)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, inv)
	if err != nil {
		return nil, fmt.Errorf("vision: encode glyph: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

// ExtractGlyph recognizes the letter in r. Any failure, including OCR
// output that is not a letter after corrections, is a recognition
// *board.TileError.
func ExtractGlyph(ctx context.Context, img gocv.Mat, r Region, rec ocr.Recognizer, corr ocr.Corrections) (rune, error) {
	png, err := GlyphImage(img, r)
	if err != nil {
		return 0, &board.TileError{Index: r.Index, Kind: board.KindRecognitionFailed, Err: err}
	}
	text, err := rec.Recognize(ctx, png)
	if err != nil {
		return 0, &board.TileError{Index: r.Index, Kind: board.KindRecognitionFailed, Err: err}
	}
	letter, err := corr.Letter(text)
	if err != nil {
		return 0, &board.TileError{Index: r.Index, Kind: board.KindRecognitionFailed, Err: err}
	}
	return letter, nil
}
