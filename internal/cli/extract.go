package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/config"
	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/vision"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

var (
	extractJSON  bool
	solveTier    string
	solveRows    []string
	solveShow    int
	solveTimeout time.Duration
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Read the guess rows from a screenshot",
	Long: `Extract segments a screenshot into tiles, classifies each tile's color
and recognizes its letter, then prints one WORD/PATTERN line per row
(G=green, Y=yellow, B=gray).

Example:
  wordle-analysis extract board.png
  wordle-analysis extract board.png --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var solveCmd = &cobra.Command{
	Use:   "solve [image]...",
	Short: "List the words consistent with one or more screenshots",
	Long: `Solve extracts every screenshot in order and filters the word list by
the combined guess history. A later screenshot of the same puzzle only
contributes the rows the earlier ones did not have.

Rows can be given by hand with --row, which is useful when a tile was
misread; they are applied after the screenshot rows.

Example:
  wordle-analysis solve monday.png
  wordle-analysis solve --row CRANE/BYBBB --row TOILS/BBBBY
  wordle-analysis solve first.png second.png --tier all`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(solveCmd)

	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print the extraction as JSON")

	solveCmd.Flags().StringVar(&solveTier, "tier", "solutions", "word tier to filter (solutions, dictionary, all)")
	solveCmd.Flags().StringArrayVar(&solveRows, "row", nil, "extra row as WORD/PATTERN, e.g. CRANE/GYBBB (repeatable)")
	solveCmd.Flags().IntVar(&solveShow, "show", 50, "maximum candidates to list (0 for all)")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 2*time.Minute, "overall extraction timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, tess, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer tess.Close()

	img, err := vision.Load(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	ex, err := pipeline.Run(cmd.Context(), img)
	if ex == nil {
		return err
	}
	out := cmd.OutOrStdout()
	if extractJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(ex); encErr != nil {
			return encErr
		}
		return err
	}
	printRows(out, ex.Rows)
	for _, w := range ex.Warnings {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
	return err
}

func runSolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(solveRows) == 0 {
		return errors.New("solve needs at least one screenshot or --row")
	}
	tier, err := constraint.ParseTier(solveTier)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	an, err := loadAnalysis(cfg)
	if err != nil {
		return err
	}

	var history board.Board
	if len(args) > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), solveTimeout)
		defer cancel()
		if history, err = extractHistory(ctx, cfg, args); err != nil {
			return err
		}
	}
	for _, raw := range solveRows {
		row, err := parseRowFlag(raw)
		if err != nil {
			return err
		}
		history.Append(row)
	}

	e := constraint.New(an.List(), tier)
	if err := e.Replay(history); err != nil {
		return err
	}
	printSolve(cmd.OutOrStdout(), history, e, an, solveShow)
	return nil
}

// extractHistory runs each screenshot and merges rows by guess position.
func extractHistory(ctx context.Context, cfg config.Config, paths []string) (board.Board, error) {
	pipeline, tess, err := newPipeline(cfg)
	if err != nil {
		return board.Board{}, err
	}
	defer tess.Close()

	var history board.Board
	for _, path := range paths {
		img, err := vision.Load(path)
		if err != nil {
			return history, err
		}
		rows, err := pipeline.ExtractBoard(ctx, img)
		img.Close()
		if err != nil {
			return history, fmt.Errorf("%s: %w", path, err)
		}
		before := history.Len()
		history = mergeRows(history, rows)
		log.Debug().Str("image", path).Int("rows", len(rows)).Int("added", history.Len()-before).Msg("screenshot read")
	}
	return history, nil
}

// mergeRows appends the rows past the end of history; rows at positions
// history already has are kept from history.
func mergeRows(history board.Board, rows []board.Row) board.Board {
	for i, row := range rows {
		if i < history.Len() {
			if have := history.Rows[i]; have.String() != row.String() {
				log.Warn().Int("row", i).Str("kept", have.String()).Str("read", row.String()).Msg("row differs between screenshots")
			}
			continue
		}
		history.Append(row)
	}
	return history
}

// parseRowFlag reads WORD/PATTERN or WORD:PATTERN.
func parseRowFlag(s string) (board.Row, error) {
	word, pattern, ok := strings.Cut(s, "/")
	if !ok {
		word, pattern, ok = strings.Cut(s, ":")
	}
	if !ok {
		return board.Row{}, fmt.Errorf("row %q: want WORD/PATTERN", s)
	}
	return board.ParseRow(word, pattern)
}

func printRows(w io.Writer, rows []board.Row) {
	for _, r := range rows {
		fmt.Fprintln(w, r.String())
	}
}

func printSolve(w io.Writer, history board.Board, e *constraint.Engine, an *words.Analysis, show int) {
	printRows(w, history.Rows)
	k := e.Knowledge()
	fmt.Fprintf(w, "\npattern %s  present [%s]  absent [%s]\n", k.Pattern, k.Present, k.Absent)
	fmt.Fprintf(w, "%d candidate(s) in tier %s\n", e.Len(), e.Tier())

	ranked := an.Rank(e.Words())
	if show > 0 && len(ranked) > show {
		ranked = ranked[:show]
	}
	for _, s := range ranked {
		fmt.Fprintf(w, "  %s  %.3f  %s\n", s.Word, s.Score, s.Label)
	}
}
