package vision

import (
	"cmp"
	"image"
	"image/color"
	"slices"

	"gocv.io/x/gocv"

	"github.com/kbfreder/wordle-analysis/internal/board"
)

// DefaultAreaFraction is the smallest tile area as a fraction of the image.
const DefaultAreaFraction = 0.02

// Segmentation thresholds on the inverted grayscale image.
const (
	segmentThresh = 70
	segmentMax    = 155
)

// Region is one detected tile outline.
type Region struct {
	Index int
	// Vertices start at the top-left corner.
	Vertices [4]image.Point
	Area     float64
	Bounds   image.Rectangle
}

func newRegion(pts []image.Point, area float64) Region {
	// Rotate so vertex 0 is the corner nearest the origin.
	start := 0
	for i, p := range pts {
		if p.X+p.Y < pts[start].X+pts[start].Y {
			start = i
		}
	}
	r := Region{Area: area}
	for i := range r.Vertices {
		r.Vertices[i] = pts[(start+i)%len(pts)]
	}

	minX, minY := r.Vertices[0].X, r.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, p := range r.Vertices[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	r.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
	return r
}

// mask returns a single-channel mask the size of Bounds with the polygon
// filled. The caller closes it.
func (r Region) mask() gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), r.Bounds.Dy(), r.Bounds.Dx(), gocv.MatTypeCV8UC1)
	pts := make([]image.Point, len(r.Vertices))
	for i, v := range r.Vertices {
		pts[i] = v.Sub(r.Bounds.Min)
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(&m, pv, color.RGBA{255, 255, 255, 0})
	return m
}

// Segment finds the tile outlines in an RGB screenshot and returns them in
// reading order: top row first, left to right within a row.
//
// Only contours with exactly four vertices and an area above
// areaFraction of the image are tiles. A result that is empty or not a
// multiple of the word length is a *board.DetectionError.
func Segment(img gocv.Mat, areaFraction float64) ([]Region, error) {
	if areaFraction <= 0 {
		areaFraction = DefaultAreaFraction
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorRGBToGray)

	inv := gocv.NewMat()
	defer inv.Close()
	gocv.BitwiseNot(gray, &inv)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(inv, &thresh, segmentThresh, segmentMax, gocv.ThresholdBinary)

	contours := gocv.FindContours(thresh, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := float64(img.Rows()*img.Cols()) * areaFraction
	var regions []Region
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if c.Size() != 4 {
			continue
		}
		area := gocv.ContourArea(c)
		if area <= minArea {
			continue
		}
		regions = append(regions, newRegion(c.ToPoints(), area))
	}

	if len(regions) == 0 || len(regions)%board.WordLength != 0 {
		return nil, &board.DetectionError{Found: len(regions)}
	}
	sortReadingOrder(regions)
	for i := range regions {
		regions[i].Index = i
	}
	return regions, nil
}

// sortReadingOrder orders regions row by row. Tiles whose top edges are
// within half the smallest tile height share a row, so a pixel of jitter
// between neighbours cannot reorder a row.
func sortReadingOrder(regions []Region) {
	if len(regions) == 0 {
		return
	}
	slices.SortStableFunc(regions, func(a, b Region) int {
		return cmp.Or(
			cmp.Compare(a.Bounds.Min.Y, b.Bounds.Min.Y),
			cmp.Compare(a.Bounds.Min.X, b.Bounds.Min.X),
		)
	})

	tol := regions[0].Bounds.Dy()
	for _, r := range regions[1:] {
		tol = min(tol, r.Bounds.Dy())
	}
	tol /= 2

	rows := make(map[image.Point]int, len(regions))
	row, top := 0, regions[0].Bounds.Min.Y
	for _, r := range regions {
		if r.Bounds.Min.Y-top > tol {
			row++
			top = r.Bounds.Min.Y
		}
		rows[r.Bounds.Min] = row
	}
	slices.SortStableFunc(regions, func(a, b Region) int {
		return cmp.Or(
			cmp.Compare(rows[a.Bounds.Min], rows[b.Bounds.Min]),
			cmp.Compare(a.Bounds.Min.X, b.Bounds.Min.X),
		)
	})
}
