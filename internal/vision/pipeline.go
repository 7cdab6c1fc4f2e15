// internal/vision/pipeline.go
//
// Screenshot -> board rows.
//
// Flow:
//   1. Segment the screenshot into tile regions (reading order).
//   2. Fan out per tile: classify color and recognize the letter.
//   3. Join, then assemble rows.
//
// Notes:
//   - The image is read-only during the fan-out; every tile allocates its
//     own Mats.
//   - Cancellation is honoured before a screenshot starts. Once tiles are
//     in flight the board runs to completion.
package vision

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/ocr"
)

// Options tunes the pipeline. Zero values take the defaults.
type Options struct {
	AreaFraction float64
	Palette      Palette
	Corrections  ocr.Corrections
	Workers      int
}

// Extraction is everything one screenshot produced.
// Rows is the valid prefix when assembly failed part way.
type Extraction struct {
	Tiles    []board.Tile       `json:"tiles"`
	Rows     []board.Row        `json:"rows"`
	Warnings []*board.TileError `json:"warnings,omitempty"`
}

type Pipeline struct {
	rec  ocr.Recognizer
	opts Options
}

// NewPipeline returns a pipeline recognizing glyphs with rec.
func NewPipeline(rec ocr.Recognizer, opts Options) *Pipeline {
	if opts.AreaFraction <= 0 {
		opts.AreaFraction = DefaultAreaFraction
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette()
	}
	if opts.Corrections == nil {
		opts.Corrections = ocr.DefaultCorrections()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Pipeline{rec: rec, opts: opts}
}

// ExtractTiles segments img and resolves every tile. Per-tile failures are
// carried on Tile.Err; only detection failures are returned as errors.
func (p *Pipeline) ExtractTiles(ctx context.Context, img gocv.Mat) ([]board.Tile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	regions, err := Segment(img, p.opts.AreaFraction)
	if err != nil {
		return nil, err
	}

	cls := NewClassifier(img, p.opts.Palette)
	defer cls.Close()

	tiles := make([]board.Tile, len(regions))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(p.opts.Workers)
	for i, r := range regions {
		g.Go(func() error {
			tiles[i] = p.tile(gctx, img, cls, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

func (p *Pipeline) tile(ctx context.Context, img gocv.Mat, cls *Classifier, r Region) board.Tile {
	t := board.Tile{Index: r.Index}
	t.Color, t.Err = cls.Classify(r)

	letter, err := ExtractGlyph(ctx, img, r, p.rec, p.opts.Corrections)
	if err != nil {
		if !isFatal(t.Err) {
			t.Err = err
		}
		return t
	}
	t.Letter = letter
	return t
}

func isFatal(err error) bool {
	var te *board.TileError
	return errors.As(err, &te) && te.Kind.Fatal()
}

// Run extracts tiles and assembles rows. On an incomplete row the
// Extraction still carries the rows before it alongside the error.
func (p *Pipeline) Run(ctx context.Context, img gocv.Mat) (*Extraction, error) {
	start := time.Now()
	tiles, err := p.ExtractTiles(ctx, img)
	if err != nil {
		log.Warn().Err(err).Msg("board detection failed")
		return nil, err
	}

	ex := &Extraction{Tiles: tiles}
	for _, t := range tiles {
		var te *board.TileError
		if errors.As(t.Err, &te) {
			if te.Kind.Fatal() {
				log.Warn().Int("tile", t.Index).Str("kind", te.Kind.String()).Err(te.Err).Msg("tile unresolved")
				continue
			}
			log.Warn().Int("tile", t.Index).Err(te.Err).Msg("tile color ambiguous")
			ex.Warnings = append(ex.Warnings, te)
		}
	}

	ex.Rows, err = board.Assemble(tiles)
	log.Info().
		Int("tiles", len(tiles)).
		Int("rows", len(ex.Rows)).
		Dur("took", time.Since(start)).
		Msg("board extracted")
	return ex, err
}

// ExtractBoard is Run reduced to the assembled rows.
func (p *Pipeline) ExtractBoard(ctx context.Context, img gocv.Mat) ([]board.Row, error) {
	ex, err := p.Run(ctx, img)
	if ex == nil {
		return nil, err
	}
	return ex.Rows, err
}

// ExtractBytes decodes a screenshot and runs the pipeline on it.
func (p *Pipeline) ExtractBytes(ctx context.Context, data []byte) (*Extraction, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()
	return p.Run(ctx, img)
}
