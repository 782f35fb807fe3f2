package handler

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/services"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/metrics"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// maxEventBody bounds one ingested event.
const maxEventBody = 16 << 10

// IngestHandler stands in for the hosted analytics-tracker function and
// stores events locally.
type IngestHandler struct {
	store   ports.EventStore
	anonKey string
	now     func() time.Time
}

func NewIngestHandler(store ports.EventStore, anonKey string) *IngestHandler {
	return &IngestHandler{store: store, anonKey: anonKey, now: time.Now}
}

func (h *IngestHandler) authorized(r *http.Request) bool {
	if h.anonKey == "" {
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.anonKey)) == 1
}

// Track accepts one {type, data} event.
func (h *IngestHandler) Track(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var event domain.AnalyticsEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event")
		return
	}
	if event.Type != domain.EventPageView && event.Type != domain.EventClick {
		writeError(w, http.StatusBadRequest, "Unknown event type")
		return
	}
	if event.Data.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Missing sessionId")
		return
	}

	stored := &domain.StoredEvent{
		Kind:       event.Type,
		SessionID:  event.Data.SessionID,
		Path:       event.Data.Path,
		LinkType:   event.Data.LinkType,
		URL:        event.Data.URL,
		ProjectID:  event.Data.ProjectID,
		UserAgent:  r.UserAgent(),
		ReceivedAt: h.now().UTC(),
	}
	if event.Data.Referrer != nil {
		stored.Referrer = *event.Data.Referrer
	}

	if err := h.store.RecordEvent(r.Context(), stored); err != nil {
		logging.Error().Err(err).Str("type", string(event.Type)).Msg("failed to record event")
		writeError(w, http.StatusInternalServerError, "Failed to record event")
		return
	}
	metrics.EventsIngested.WithLabelValues(string(event.Type)).Inc()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Dashboard is the admin landing view: all projects and the event summary.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	projects, err := h.admin.ListProjects(r.Context())
	if err != nil {
		renderError(w, "admin")
		return
	}
	summary, err := h.admin.AnalyticsSummary(r.Context(), 10)
	if err != nil {
		renderError(w, "admin")
		return
	}
	renderContent(w, "admin", map[string]any{
		"projects":  projects,
		"analytics": summary,
	})
}

func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.admin.ListProjects(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Analytics returns the summary; ?limit caps the top paths list.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	summary, err := h.admin.AnalyticsSummary(r.Context(), limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "Analytics are not stored locally")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
