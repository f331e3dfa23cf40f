package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pscheid92/photocontest/internal/domain"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	UploadDir        string `env:"UPLOAD_DIR" default:"uploads"`
	MaxUploadSize    string `env:"MAX_UPLOAD_SIZE" default:"10M"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS"`
	TrustProxy       bool   `env:"TRUST_PROXY" default:"false"`

	AllowedExtensions string `env:"ALLOWED_EXTENSIONS" default:"gif,jpg,png"`
	MaxTitleLength    int    `env:"MAX_TITLE_LENGTH" default:"25"`
	MaxAuthorLength   int    `env:"MAX_AUTHOR_LENGTH" default:"50"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" default:"0s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SubmissionRules converts the validation settings into domain rules.
func (c *Config) SubmissionRules() domain.SubmissionRules {
	exts := splitList(c.AllowedExtensions)
	for i, ext := range exts {
		exts[i] = strings.ToLower(ext)
	}
	return domain.SubmissionRules{
		AllowedExtensions: exts,
		MaxTitleLength:    c.MaxTitleLength,
		MaxAuthorLength:   c.MaxAuthorLength,
	}
}

// CORSOrigins returns the configured origins, or nil when CORS is disabled.
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowOrigins)
}

func validate(cfg *Config) error {
	if cfg.IsProduction() && cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if cfg.IsProduction() && cfg.DatabaseURL != "" {
		if mode := sslMode(cfg.DatabaseURL); mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
		}
	}

	if len(splitList(cfg.AllowedExtensions)) == 0 {
		return errors.New("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if cfg.MaxTitleLength <= 0 {
		return fmt.Errorf("MAX_TITLE_LENGTH must be positive, got %d", cfg.MaxTitleLength)
	}
	if cfg.MaxAuthorLength <= 0 {
		return fmt.Errorf("MAX_AUTHOR_LENGTH must be positive, got %d", cfg.MaxAuthorLength)
	}
	if cfg.ReconcileInterval < 0 {
		return errors.New("RECONCILE_INTERVAL must not be negative")
	}

	return nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Query().Get("sslmode"))
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
