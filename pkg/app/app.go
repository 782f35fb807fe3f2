// Package app wires configuration to a ready HTTP handler. The server binary
// and the serverless entrypoint share it.
package app

import (
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/giftportfolio/portfolio/pkg/adapters/analytics"
	"github.com/giftportfolio/portfolio/pkg/adapters/backend/postgrest"
	"github.com/giftportfolio/portfolio/pkg/adapters/handler"
	"github.com/giftportfolio/portfolio/pkg/adapters/repository/sqlite"
	"github.com/giftportfolio/portfolio/pkg/config"
	"github.com/giftportfolio/portfolio/pkg/core/services"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

type App struct {
	Handler http.Handler
	closers []io.Closer
}

// New picks the content backend named by cfg.Backend and builds the router.
// Configuration problems are logged and the app runs degraded.
func New(cfg *config.Config) (*App, error) {
	for _, err := range cfg.Validate() {
		logging.Warn().Err(err).Msg("configuration incomplete")
	}

	a := &App{}
	var (
		public     ports.Backend
		privileged ports.Backend
		events     ports.EventStore
	)

	switch cfg.Backend {
	case config.BackendPostgREST:
		client := postgrest.NewClient(cfg.SupabaseURL, cfg.AnonKey, cfg.RequestTimeout)
		public = client
		privileged = client
		if cfg.ServiceRoleKey != "" {
			privileged = client.WithKey(cfg.ServiceRoleKey)
		} else {
			logging.Warn().Msg("SUPABASE_SERVICE_ROLE_KEY not set, admin listing limited to published projects")
		}
	default:
		repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "open local content store")
		}
		a.closers = append(a.closers, repo)
		public, privileged, events = repo, repo, repo
	}

	sink := analytics.NewHTTPSink(cfg.AnalyticsURL, cfg.AnonKey, cfg.RequestTimeout)

	a.Handler = handler.NewRouter(cfg, handler.Deps{
		Content: services.NewContentService(public),
		Admin:   services.NewAdminService(privileged, events),
		Sink:    sink,
		Events:  events,
	})

	logging.Info().
		Str("backend", cfg.Backend).
		Str("env", cfg.AppEnv).
		Bool("local_ingest", events != nil).
		Msg("application initialized")
	return a, nil
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
