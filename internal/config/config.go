// internal/config/config.go
//
// Effective configuration for the CLI and HTTP server.
// Sources, highest priority first:
//   - CLI flags bound by the caller
//   - Environment variables (WORDLE_*, plus the legacy PORT, CLIENT_ORIGIN,
//     JWT_SECRET, LOG_LEVEL, DB_PATH, WORDS_*_FILE names)
//   - Config file (~/.wordle-analysis/config.yaml or --config)
//   - Defaults from Default()
//
// A .env file in the working directory is loaded into the process
// environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "WORDLE"

// DirName is the per-user config directory under $HOME.
const DirName = ".wordle-analysis"

type Config struct {
	LogLevel string       `mapstructure:"log_level" yaml:"log_level"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`
	Auth     AuthConfig   `mapstructure:"auth" yaml:"auth"`
	Words    WordsConfig  `mapstructure:"words" yaml:"words"`
	Vision   VisionConfig `mapstructure:"vision" yaml:"vision"`
	OCR      OCRConfig    `mapstructure:"ocr" yaml:"ocr"`
	Cache    CacheConfig  `mapstructure:"cache" yaml:"cache"`
	DB       DBConfig     `mapstructure:"db" yaml:"db"`
}

type ServerConfig struct {
	Port           int     `mapstructure:"port" yaml:"port"`
	ClientOrigin   string  `mapstructure:"client_origin" yaml:"client_origin"`
	MaxUploadBytes int64   `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // uploads per second per client; 0 disables
	RateBurst      int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// WordsConfig selects the corpus. CorpusFile wins over the line files;
// with neither set the embedded corpus is used.
type WordsConfig struct {
	CorpusFile  string `mapstructure:"corpus_file" yaml:"corpus_file"`
	Sentinel    string `mapstructure:"sentinel" yaml:"sentinel"`
	AnswersFile string `mapstructure:"answers_file" yaml:"answers_file"`
	AllowedFile string `mapstructure:"allowed_file" yaml:"allowed_file"`
}

type VisionConfig struct {
	AreaFraction float64 `mapstructure:"area_fraction" yaml:"area_fraction"`
	Tolerance    int     `mapstructure:"tolerance" yaml:"tolerance"`
	Workers      int     `mapstructure:"workers" yaml:"workers"`
}

type OCRConfig struct {
	Language       string            `mapstructure:"language" yaml:"language"`
	TessdataPrefix string            `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix"`
	Corrections    map[string]string `mapstructure:"corrections" yaml:"corrections"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// DBConfig.Path empty keeps sessions in memory.
type DBConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:           5175,
			ClientOrigin:   "http://localhost:5173",
			MaxUploadBytes: 10 << 20,
			RateLimit:      1,
			RateBurst:      5,
		},
		Auth: AuthConfig{
			Secret:   "dev_secret_change_me",
			TokenTTL: 14 * 24 * time.Hour,
		},
		Words: WordsConfig{
			Sentinel: "CIGAR",
		},
		Vision: VisionConfig{
			AreaFraction: 0.02,
			Tolerance:    10,
			Workers:      4,
		},
		OCR: OCRConfig{
			Language: "eng",
		},
		Cache: CacheConfig{
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
	}
}

// legacyEnv maps keys to the unprefixed variable names the server has
// always honoured.
var legacyEnv = map[string]string{
	"log_level":            "LOG_LEVEL",
	"server.port":          "PORT",
	"server.client_origin": "CLIENT_ORIGIN",
	"auth.secret":          "JWT_SECRET",
	"db.path":              "DB_PATH",
	"words.answers_file":   "WORDS_ANSWERS_FILE",
	"words.allowed_file":   "WORDS_ALLOWED_FILE",
}

// SetDefaults registers every key of Default() on v so that environment
// overrides are visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.client_origin", d.Server.ClientOrigin)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("auth.secret", d.Auth.Secret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("words.corpus_file", d.Words.CorpusFile)
	v.SetDefault("words.sentinel", d.Words.Sentinel)
	v.SetDefault("words.answers_file", d.Words.AnswersFile)
	v.SetDefault("words.allowed_file", d.Words.AllowedFile)
	v.SetDefault("vision.area_fraction", d.Vision.AreaFraction)
	v.SetDefault("vision.tolerance", d.Vision.Tolerance)
	v.SetDefault("vision.workers", d.Vision.Workers)
	v.SetDefault("ocr.language", d.OCR.Language)
	v.SetDefault("ocr.tessdata_prefix", d.OCR.TessdataPrefix)
	v.SetDefault("ocr.corrections", map[string]string{})
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("db.path", d.DB.Path)
}

// Init prepares v the way the CLI does: .env, defaults, env binding and
// the optional config file. A missing default config file is not an error;
// a missing explicit one is.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(filepath.Join(home, DirName))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes the effective configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, errors.New("server.rate_limit and server.rate_burst must not be negative"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Vision.AreaFraction <= 0 || c.Vision.AreaFraction >= 1 {
		errs = append(errs, fmt.Errorf("vision.area_fraction %g must be in (0,1)", c.Vision.AreaFraction))
	}
	if c.Vision.Tolerance < 0 || c.Vision.Tolerance > 255 {
		errs = append(errs, fmt.Errorf("vision.tolerance %d must be in [0,255]", c.Vision.Tolerance))
	}
	if c.Vision.Workers < 0 {
		errs = append(errs, errors.New("vision.workers must not be negative"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
