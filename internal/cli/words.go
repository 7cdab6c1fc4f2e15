package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

var (
	wordsShow   bool
	randomCount int
	cheatTier   string
)

// wordsCmd groups the word list queries.
var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Query the word list",
	Long: `Word list queries over the solution partition.

Lookups print a count; add --show to list the words as well.

Example:
  wordle-analysis words starts-with ST --show
  wordle-analysis words frequency all
  wordle-analysis words score crane
  wordle-analysis words cheat ERS AIO`,
}

var patternCmd = &cobra.Command{
	Use:   "pattern <regexp>",
	Short: "Solutions matching a regular expression (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		ws, err := an.List().Pattern(args[0])
		if err != nil {
			return err
		}
		printWords(cmd.OutOrStdout(), ws, wordsShow)
		return nil
	}),
}

var startsWithCmd = &cobra.Command{
	Use:   "starts-with <prefix>",
	Short: "Solutions beginning with prefix",
	Args:  cobra.ExactArgs(1),
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		printWords(cmd.OutOrStdout(), an.List().StartsWith(args[0]), wordsShow)
		return nil
	}),
}

var endsWithCmd = &cobra.Command{
	Use:   "ends-with <suffix>",
	Short: "Solutions ending with suffix",
	Args:  cobra.ExactArgs(1),
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		printWords(cmd.OutOrStdout(), an.List().EndsWith(args[0]), wordsShow)
		return nil
	}),
}

var frequencyCmd = &cobra.Command{
	Use:   "frequency [letter|all]",
	Short: "Letter frequencies over the solutions",
	Args:  cobra.MaximumNArgs(1),
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 || strings.EqualFold(args[0], "all") {
			fmt.Fprintln(out, "letter  in-words  occurrence")
			for _, lf := range an.Frequencies() {
				printFrequency(out, lf)
			}
			return nil
		}
		lf, err := an.LetterFrequency(args[0])
		if err != nil {
			return err
		}
		printFrequency(out, lf)
		return nil
	}),
}

var scoreCmd = &cobra.Command{
	Use:   "score <word>",
	Short: "Opening-guess score of a word",
	Args:  cobra.ExactArgs(1),
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		s, ok := an.Score(args[0])
		if !ok {
			return fmt.Errorf("%s is not in the word list", strings.ToUpper(args[0]))
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  score %.3f  (word %.3f, letter %.3f)\n", s.Word, s.Score, s.WordFreqScore, s.LetterFreqScore)
		if s.Label == words.LabelDictionary {
			fmt.Fprintln(out, "note: not in solution list")
		}
		return nil
	}),
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Sample distinct solutions",
	Args:  cobra.NoArgs,
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		printWords(cmd.OutOrStdout(), an.List().Random(randomCount, nil), true)
		return nil
	}),
}

var cheatCmd = &cobra.Command{
	Use:   "cheat <yes> [no]",
	Short: "Words containing every letter of yes and none of no",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withAnalysis(func(cmd *cobra.Command, an *words.Analysis, args []string) error {
		tier, err := constraint.ParseTier(cheatTier)
		if err != nil {
			return err
		}
		no := ""
		if len(args) == 2 {
			no = args[1]
		}
		cands, err := constraint.NewIndex(an.List(), tier).Cheat(args[0], no)
		if err != nil {
			return err
		}
		ws := make([]string, len(cands))
		for i, c := range cands {
			ws[i] = c.Word
		}
		printWords(cmd.OutOrStdout(), ws, wordsShow)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(wordsCmd)
	wordsCmd.PersistentFlags().BoolVar(&wordsShow, "show", false, "list matching words, not just the count")

	randomCmd.Flags().IntVarP(&randomCount, "count", "n", 10, "number of words")
	cheatCmd.Flags().StringVar(&cheatTier, "tier", "solutions", "word tier to search (solutions, dictionary, all)")

	wordsCmd.AddCommand(patternCmd, startsWithCmd, endsWithCmd, frequencyCmd, scoreCmd, randomCmd, cheatCmd)
}

// withAnalysis loads config and the word list before running fn.
func withAnalysis(fn func(cmd *cobra.Command, an *words.Analysis, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		an, err := loadAnalysis(cfg)
		if err != nil {
			return err
		}
		return fn(cmd, an, args)
	}
}

func printWords(w io.Writer, ws []string, show bool) {
	fmt.Fprintf(w, "%d word(s)\n", len(ws))
	if show && len(ws) > 0 {
		fmt.Fprintln(w, strings.Join(ws, " "))
	}
}

func printFrequency(w io.Writer, lf words.LetterFrequency) {
	fmt.Fprintf(w, "%-6s  %8s  %10s\n", lf.Letter, pct(lf.InWords), strconv.FormatFloat(lf.Occurrence, 'f', 3, 64))
}

func pct(f float64) string { return strconv.FormatFloat(f*100, 'f', 1, 64) + "%" }
