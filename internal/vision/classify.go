package vision

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/kbfreder/wordle-analysis/internal/board"
)

// DefaultTolerance is the per-channel window around each reference color.
const DefaultTolerance = 10

// Palette holds the reference tile colors in RGB.
// A pixel matches a color when every channel is within Tolerance, inclusive.
type Palette struct {
	Green     color.RGBA
	Yellow    color.RGBA
	Gray      color.RGBA
	Tolerance uint8
}

// DefaultPalette is the light-theme puzzle palette.
func DefaultPalette() Palette {
	return Palette{
		Green:     color.RGBA{121, 167, 107, 255},
		Yellow:    color.RGBA{199, 180, 102, 255},
		Gray:      color.RGBA{121, 124, 126, 255},
		Tolerance: DefaultTolerance,
	}
}

// priority is the order colors are tested in; the first match wins.
var priority = [3]board.Color{board.Green, board.Yellow, board.Gray}

func (p Palette) reference(c board.Color) color.RGBA {
	switch c {
	case board.Green:
		return p.Green
	case board.Yellow:
		return p.Yellow
	}
	return p.Gray
}

func (p Palette) bounds(c board.Color) (lo, hi gocv.Scalar) {
	ref := p.reference(c)
	tol := int(p.Tolerance)
	ch := func(v uint8) (float64, float64) {
		return float64(max(int(v)-tol, 0)), float64(min(int(v)+tol, 255))
	}
	rl, rh := ch(ref.R)
	gl, gh := ch(ref.G)
	bl, bh := ch(ref.B)
	return gocv.NewScalar(rl, gl, bl, 0), gocv.NewScalar(rh, gh, bh, 0)
}

// Classifier holds one in-range mask per palette color for a single image.
// Classify may be called from many goroutines; Close once all are done.
type Classifier struct {
	masks [len(priority)]gocv.Mat
}

// NewClassifier computes the color masks for an RGB image.
func NewClassifier(img gocv.Mat, p Palette) *Classifier {
	c := &Classifier{}
	for i, col := range priority {
		lo, hi := p.bounds(col)
		c.masks[i] = gocv.NewMat()
		gocv.InRangeWithScalar(img, lo, hi, &c.masks[i])
	}
	return c
}

// Classify returns the color of the tile inside r.
//
// Colors are tested green, yellow, gray and the first with any pixel inside
// the region wins. If more than one color is present the winner is still
// returned, along with a non-fatal ambiguous *board.TileError. If none is
// present the result is board.Unclassified and a fatal *board.TileError.
func (c *Classifier) Classify(r Region) (board.Color, error) {
	rm := r.mask()
	defer rm.Close()

	var hits []board.Color
	for i, col := range priority {
		sub := c.masks[i].Region(r.Bounds)
		overlap := gocv.NewMat()
		gocv.BitwiseAnd(sub, rm, &overlap)
		if gocv.CountNonZero(overlap) > 0 {
			hits = append(hits, col)
		}
		overlap.Close()
		sub.Close()
	}

	switch len(hits) {
	case 0:
		return board.Unclassified, &board.TileError{Index: r.Index, Kind: board.KindClassificationFailed}
	case 1:
		return hits[0], nil
	}
	return hits[0], &board.TileError{
		Index: r.Index,
		Kind:  board.KindClassificationAmbiguous,
		Err:   fmt.Errorf("matched %v, chose %s", hits, hits[0]),
	}
}

// Close releases the color masks.
func (c *Classifier) Close() {
	for i := range c.masks {
		c.masks[i].Close()
	}
}

// Classify classifies a single region without keeping the masks around.
func Classify(img gocv.Mat, r Region, p Palette) (board.Color, error) {
	c := NewClassifier(img, p)
	defer c.Close()
	return c.Classify(r)
}
