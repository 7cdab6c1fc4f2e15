package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.Server != want.Server {
		t.Errorf("server = %+v, want %+v", cfg.Server, want.Server)
	}
	if cfg.Auth != want.Auth {
		t.Errorf("auth = %+v, want %+v", cfg.Auth, want.Auth)
	}
	if cfg.Vision != want.Vision {
		t.Errorf("vision = %+v, want %+v", cfg.Vision, want.Vision)
	}
	if cfg.Words.Sentinel != "CIGAR" || cfg.DB.Path != "" {
		t.Errorf("words = %+v db = %+v", cfg.Words, cfg.DB)
	}
	if cfg.Level() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", cfg.Level())
	}
}

func TestInit_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := strings.Join([]string{
		"log_level: debug",
		"server:",
		"  port: 8080",
		"auth:",
		"  token_ttl: 1h",
		"vision:",
		"  tolerance: 12",
		"ocr:",
		"  corrections:",
		"    \"|\": I",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORDLE_VISION_WORKERS", "8")
	t.Setenv("JWT_SECRET", "s3cret")

	v := viper.New()
	if err := Init(v, path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl = %v, want 1h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.Secret != "s3cret" {
		t.Errorf("secret = %q, want legacy JWT_SECRET value", cfg.Auth.Secret)
	}
	if cfg.Vision.Tolerance != 12 || cfg.Vision.Workers != 8 {
		t.Errorf("vision = %+v", cfg.Vision)
	}
	if cfg.Vision.AreaFraction != 0.02 {
		t.Errorf("area fraction = %v, want default 0.02", cfg.Vision.AreaFraction)
	}
	if cfg.OCR.Corrections["|"] != "I" {
		t.Errorf("corrections = %v", cfg.OCR.Corrections)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", cfg.Level())
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	if err := Init(v, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Init() with a missing explicit file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"port", func(c *Config) { c.Server.Port = 0 }, false},
		{"upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }, false},
		{"area", func(c *Config) { c.Vision.AreaFraction = 1 }, false},
		{"tolerance", func(c *Config) { c.Vision.Tolerance = 300 }, false},
		{"ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, false},
		{"level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"rate off", func(c *Config) { c.Server.RateLimit = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
