package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
)

const (
	BackendPostgREST = "postgrest"
	BackendSQLite    = "sqlite"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	Backend     string `env:"BACKEND" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:portfolio.sqlite"`

	// Hosted backend. The NEXT_PUBLIC_ names are accepted so an existing
	// frontend .env can be reused as is.
	SupabaseURL       string        `env:"SUPABASE_URL"`
	PublicSupabaseURL string        `env:"NEXT_PUBLIC_SUPABASE_URL"`
	AnonKey           string        `env:"SUPABASE_ANON_KEY"`
	PublicAnonKey     string        `env:"NEXT_PUBLIC_SUPABASE_ANON_KEY"`
	ServiceRoleKey    string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
	JWTSecret         string        `env:"SUPABASE_JWT_SECRET"`
	AnalyticsURL      string        `env:"ANALYTICS_URL"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ClickFlushTimeout time.Duration `env:"CLICK_FLUSH_TIMEOUT" envDefault:"750ms"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.SupabaseURL == "" {
		c.SupabaseURL = c.PublicSupabaseURL
	}
	if c.AnonKey == "" {
		c.AnonKey = c.PublicAnonKey
	}
	c.SupabaseURL = strings.TrimRight(c.SupabaseURL, "/")
	if c.AnalyticsURL == "" {
		c.AnalyticsURL = c.SupabaseURL
	}
	c.AnalyticsURL = strings.TrimRight(c.AnalyticsURL, "/")
	c.Backend = strings.ToLower(c.Backend)
}

// Validate reports missing required settings. The caller decides whether to
// keep running; nothing here is fatal.
func (c *Config) Validate() []error {
	var errs []error
	if c.Backend == BackendPostgREST {
		if c.SupabaseURL == "" {
			errs = append(errs, &domain.ConfigError{Key: "SUPABASE_URL"})
		}
		if c.AnonKey == "" {
			errs = append(errs, &domain.ConfigError{Key: "SUPABASE_ANON_KEY"})
		}
	} else if c.Backend != BackendSQLite {
		errs = append(errs, &domain.ConfigError{Key: "BACKEND", Reason: "must be postgrest or sqlite, got " + c.Backend})
	}
	if c.AnalyticsURL == "" {
		errs = append(errs, &domain.ConfigError{Key: "ANALYTICS_URL", Reason: "no ingestion endpoint, events will be dropped"})
	}
	if c.JWTSecret == "" {
		errs = append(errs, &domain.ConfigError{Key: "SUPABASE_JWT_SECRET", Reason: "admin area disabled"})
	}
	return errs
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
