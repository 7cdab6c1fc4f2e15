// internal/ocr/tesseract.go
//
// Tesseract-backed Recognizer.
//
// A gosseract client wraps a single TessBaseAPI handle and must not be used
// from two goroutines at once, so clients live in a fixed-size pool and a
// Recognize call holds one for its whole duration.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// TesseractOptions configures every pooled client.
type TesseractOptions struct {
	Language       string
	TessdataPrefix string
	// Whitelist restricts output characters; empty disables the restriction.
	Whitelist string
	// Size is the pool size, normally the pipeline worker count.
	Size int
}

// DefaultWhitelist keeps the letters plus the characters the correction map
// knows how to repair.
const DefaultWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ|01258!$"

type Tesseract struct {
	pool chan *gosseract.Client
}

// NewTesseract creates and configures opts.Size clients up front.
func NewTesseract(opts TesseractOptions) (*Tesseract, error) {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Language == "" {
		opts.Language = "eng"
	}

	t := &Tesseract{pool: make(chan *gosseract.Client, opts.Size)}
	for i := 0; i < opts.Size; i++ {
		c, err := newClient(opts)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.pool <- c
	}
	log.Debug().Int("clients", opts.Size).Str("lang", opts.Language).Msg("tesseract pool ready")
	return t, nil
}

func newClient(opts TesseractOptions) (*gosseract.Client, error) {
	c := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		c.TessdataPrefix = opts.TessdataPrefix
	}
	if err := c.SetLanguage(opts.Language); err != nil {
		c.Close()
		return nil, fmt.Errorf("ocr: set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		c.Close()
		return nil, fmt.Errorf("ocr: set page seg mode: %w", err)
	}
	if opts.Whitelist != "" {
		if err := c.SetWhitelist(opts.Whitelist); err != nil {
			c.Close()
			return nil, fmt.Errorf("ocr: set whitelist: %w", err)
		}
	}
	return c, nil
}

// Recognize runs OCR on one PNG image.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	var c *gosseract.Client
	select {
	case c = <-t.pool:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { t.pool <- c }()

	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("ocr: set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Close releases every pooled client. Recognize must not be called after.
func (t *Tesseract) Close() error {
	for {
		select {
		case c := <-t.pool:
			c.Close()
		default:
			return nil
		}
	}
}
