package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giftportfolio/portfolio/pkg/config"
	"github.com/giftportfolio/portfolio/pkg/core/services"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// Deps are the services the router serves. Events is nil when analytics
// are not stored by this process.
type Deps struct {
	Content ports.ContentService
	Admin   *services.AdminService
	Sink    ports.EventSink
	Events  ports.EventStore
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	// Initialize Handlers
	h := NewHTTPHandler(deps.Content)
	pages := NewPageHandler(deps.Content)
	th := NewTrackingHandler(deps.Sink, cfg.IsProduction(), cfg.ClickFlushTimeout)
	ah := NewAdminHandler(deps.Admin)

	// Initialize Middleware
	mw := NewMiddleware(cfg, deps.Content)
	formLimit := httprate.LimitByIP(5, time.Minute)
	eventLimit := httprate.LimitByIP(120, time.Minute)

	// Setup Router
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Pages
	page := func(fn http.HandlerFunc) http.Handler { return th.PageViews(fn) }
	mux.Handle("GET /{$}", page(pages.Home))
	mux.Handle("GET /about", page(pages.About))
	mux.Handle("GET /projects", page(pages.Projects))
	mux.Handle("GET /projects/{slug}", page(pages.Project))
	mux.Handle("GET /skills", page(pages.Skills))
	mux.Handle("GET /contact", page(pages.Contact))

	// Tracking
	mux.HandleFunc("GET /out", th.Out)
	mux.Handle("POST /api/v1/track/click", eventLimit(http.HandlerFunc(th.Click)))
	mux.HandleFunc("GET /api/v1/preferences", th.GetPreferences)
	mux.HandleFunc("POST /api/v1/preferences/theme", th.SetTheme)
	if deps.Events != nil {
		ih := NewIngestHandler(deps.Events, cfg.AnonKey)
		mux.Handle("POST /functions/v1/analytics-tracker", eventLimit(http.HandlerFunc(ih.Track)))
	}

	// Content API
	mux.HandleFunc("GET /api/v1/projects", h.ListProjects)
	mux.HandleFunc("GET /api/v1/projects/{slug}", h.GetProject)
	mux.HandleFunc("GET /api/v1/projects/id/{id}", h.GetProjectByID)
	mux.HandleFunc("GET /api/v1/skills", h.ListSkills)
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/profile", h.GetProfile)
	mux.HandleFunc("GET /api/v1/stats", h.GetStats)
	mux.Handle("POST /api/v1/contact", formLimit(http.HandlerFunc(h.Contact)))

	// Admin
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /admin", ah.Dashboard)
	adminMux.HandleFunc("GET /api/v1/admin/projects", ah.ListProjects)
	adminMux.HandleFunc("GET /api/v1/admin/analytics", ah.Analytics)

	mux.Handle("/admin", mw.AdminMiddleware(adminMux))
	mux.Handle("/api/v1/admin/", mw.AdminMiddleware(adminMux))

	return mux
}
