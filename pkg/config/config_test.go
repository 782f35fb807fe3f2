package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "PORT", "BACKEND", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL", "ANALYTICS_URL", "REQUEST_TIMEOUT")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadPublicFallbacks(t *testing.T) {
	unsetenv(t, "SUPABASE_URL", "SUPABASE_ANON_KEY", "ANALYTICS_URL")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "public-anon")
	t.Setenv("BACKEND", "PostgREST")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SupabaseURL != "https://abc.supabase.co" {
		t.Errorf("supabase url = %q", cfg.SupabaseURL)
	}
	if cfg.AnonKey != "public-anon" {
		t.Errorf("anon key = %q", cfg.AnonKey)
	}
	if cfg.AnalyticsURL != cfg.SupabaseURL {
		t.Errorf("analytics url = %q, want supabase url", cfg.AnalyticsURL)
	}
	if cfg.Backend != BackendPostgREST {
		t.Errorf("backend = %q", cfg.Backend)
	}
}

func TestLoadAnalyticsOverride(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("ANALYTICS_URL", "http://localhost:8080/")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AnalyticsURL != "http://localhost:8080" {
		t.Errorf("analytics url = %q", cfg.AnalyticsURL)
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantKeys []string
	}{
		{
			name:     "complete postgrest",
			cfg:      Config{Backend: BackendPostgREST, SupabaseURL: "https://x", AnonKey: "k", AnalyticsURL: "https://x", JWTSecret: "s"},
			wantKeys: nil,
		},
		{
			name:     "postgrest missing everything",
			cfg:      Config{Backend: BackendPostgREST},
			wantKeys: []string{"SUPABASE_URL", "SUPABASE_ANON_KEY", "ANALYTICS_URL", "SUPABASE_JWT_SECRET"},
		},
		{
			name:     "sqlite needs no hosted backend",
			cfg:      Config{Backend: BackendSQLite, AnalyticsURL: "http://localhost:8080", JWTSecret: "s"},
			wantKeys: nil,
		},
		{
			name:     "unknown backend",
			cfg:      Config{Backend: "mongo", AnalyticsURL: "x", JWTSecret: "s"},
			wantKeys: []string{"BACKEND"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.cfg.Validate()
			if len(errs) != len(tt.wantKeys) {
				t.Fatalf("got %d errors %v, want keys %v", len(errs), errs, tt.wantKeys)
			}
			for i, err := range errs {
				var cerr *domain.ConfigError
				if !errors.As(err, &cerr) {
					t.Fatalf("error %v is not a ConfigError", err)
				}
				if cerr.Key != tt.wantKeys[i] {
					t.Errorf("error %d key = %q, want %q", i, cerr.Key, tt.wantKeys[i])
				}
			}
		})
	}
}
