package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbfreder/wordle-analysis/internal/cache"
	"github.com/kbfreder/wordle-analysis/internal/httpserver"
	"github.com/kbfreder/wordle-analysis/internal/vision"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes screenshot extraction, solving sessions and word list
queries over HTTP.

Sessions are kept in memory unless db.path (WORDLE_DB_PATH / DB_PATH) points
at a SQLite file.

Example:
  wordle-analysis serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "listen port (default from server.port)")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	serveCmd.Flags().String("db", "", "SQLite session database path (default: in memory)")
	_ = viper.BindPFlag("db.path", serveCmd.Flags().Lookup("db"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	an, err := loadAnalysis(cfg)
	if err != nil {
		return err
	}
	pipeline, tess, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer tess.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	results := cache.NewMemoryCache[*vision.Extraction](cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	srv := httpserver.New(st, pipeline, an, results, httpserver.Options{
		ClientOrigin:   cfg.Server.ClientOrigin,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		Secret:         []byte(cfg.Auth.Secret),
		TokenTTL:       cfg.Auth.TokenTTL,
		SecureCookies:  os.Getenv("NODE_ENV") == "production",
		CacheTTL:       cfg.Cache.TTL,
	})

	if cfg.Auth.Secret == "dev_secret_change_me" {
		log.Warn().Msg("auth.secret is the development default; set WORDLE_AUTH_SECRET or JWT_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Str("db", cfg.DB.Path).Msg("starting wordle-analysis server")
	if err := srv.Start(ctx, addr); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
