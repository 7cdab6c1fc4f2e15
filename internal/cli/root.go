package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbfreder/wordle-analysis/internal/config"
	"github.com/kbfreder/wordle-analysis/internal/ocr"
	"github.com/kbfreder/wordle-analysis/internal/store"
	"github.com/kbfreder/wordle-analysis/internal/vision"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

// version is overridden at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var (
	cfgFile string
	initErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wordle-analysis",
	Short: "Read puzzle screenshots and narrow down the answer",
	Long: `wordle-analysis reads screenshots of a five-letter word puzzle, recovers
each guess and its colored feedback, and filters a word list down to the
answers still consistent with every guess.

It also answers word list questions: letter frequencies, opening-guess
scores, prefix/suffix/pattern lookups and a positionless contains filter.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wordle-analysis %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wordle-analysis/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	initErr = config.Init(viper.GetViper(), cfgFile)
}

// loadConfig returns the effective configuration and applies its log level.
// CLI output goes to stdout; logs go to stderr in console form.
func loadConfig() (config.Config, error) {
	if initErr != nil {
		return config.Config{}, initErr
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if f := viper.ConfigFileUsed(); f != "" {
		log.Debug().Str("file", f).Msg("using config file")
	}
	return cfg, nil
}

// loadAnalysis loads the configured corpus and precomputes its scores.
func loadAnalysis(cfg config.Config) (*words.Analysis, error) {
	l, err := words.Load(words.Source{
		CorpusFile:  cfg.Words.CorpusFile,
		Sentinel:    cfg.Words.Sentinel,
		AnswersFile: cfg.Words.AnswersFile,
		AllowedFile: cfg.Words.AllowedFile,
	})
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	sol, dict := l.Stats()
	log.Debug().Int("solutions", sol).Int("dictionary", dict).Msg("word list loaded")
	return words.NewAnalysis(l), nil
}

// pipelineOptions maps config onto vision options.
func pipelineOptions(cfg config.Config) (vision.Options, error) {
	extra, err := ocr.ParseCorrections(cfg.OCR.Corrections)
	if err != nil {
		return vision.Options{}, err
	}
	palette := vision.DefaultPalette()
	palette.Tolerance = uint8(cfg.Vision.Tolerance)
	return vision.Options{
		AreaFraction: cfg.Vision.AreaFraction,
		Palette:      palette,
		Corrections:  ocr.DefaultCorrections().Merge(extra),
		Workers:      cfg.Vision.Workers,
	}, nil
}

// newPipeline builds the screenshot pipeline on a Tesseract pool sized to
// the worker count. The caller closes the returned Tesseract.
func newPipeline(cfg config.Config) (*vision.Pipeline, *ocr.Tesseract, error) {
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	size := opts.Workers
	if size < 1 {
		size = runtime.NumCPU()
	}
	tess, err := ocr.NewTesseract(ocr.TesseractOptions{
		Language:       cfg.OCR.Language,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
		Whitelist:      ocr.DefaultWhitelist,
		Size:           size,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("start tesseract: %w", err)
	}
	opts.Workers = size
	return vision.NewPipeline(tess, opts), tess, nil
}

// openStore opens SQLite when db.path is set, memory otherwise.
func openStore(cfg config.Config) (store.Store, error) {
	if cfg.DB.Path == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return st, nil
}
