// internal/vision/image.go
//
// Screenshot ingestion.
//
// Every Mat handed to the rest of the package is 8-bit, 3-channel, RGB.
// OpenCV decodes to BGR, so the conversion happens exactly once, here.
package vision

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
)

// ErrDecode is returned for data OpenCV cannot read as an image.
var ErrDecode = errors.New("vision: cannot decode image")

// Decode reads PNG or JPEG bytes into an RGB Mat. The caller closes it.
func Decode(data []byte) (gocv.Mat, error) {
	bgr, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer bgr.Close()
	if bgr.Empty() {
		return gocv.Mat{}, ErrDecode
	}

	rgb := gocv.NewMat()
	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)
	return rgb, nil
}

// Load reads and decodes an image file.
func Load(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("vision: read %s: %w", path, err)
	}
	return Decode(data)
}

// FromImage converts a Go image into an RGB Mat. The caller closes it.
func FromImage(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, ErrDecode
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("vision: convert image: %w", err)
	}
	defer mat.Close()

	rgb := gocv.NewMat()
	gocv.CvtColor(mat, &rgb, gocv.ColorRGBAToRGB)
	return rgb, nil
}
