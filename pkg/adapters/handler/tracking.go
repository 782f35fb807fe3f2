package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/services"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// scope is the per-request view of one browser: its storage, session and
// tracker. Page handlers may tag the view with a project id.
type scope struct {
	store     *CookieStore
	sessions  *services.SessionManager
	tracker   *services.Tracker
	prefs     *services.Preferences
	projectID *int64
}

type scopeKey struct{}

type TrackingHandler struct {
	sink         ports.EventSink
	secure       bool
	flushTimeout time.Duration
}

func NewTrackingHandler(sink ports.EventSink, secure bool, flushTimeout time.Duration) *TrackingHandler {
	return &TrackingHandler{sink: sink, secure: secure, flushTimeout: flushTimeout}
}

func (h *TrackingHandler) newScope(w http.ResponseWriter, r *http.Request) *scope {
	store := NewCookieStore(w, r, h.secure)
	sessions := services.NewSessionManager(store)
	return &scope{
		store:    store,
		sessions: sessions,
		tracker:  services.NewTracker(h.sink, sessions, requestBrowsing{r: r}),
		prefs:    services.NewPreferences(store),
	}
}

// scopeFor returns the scope PageViews attached, or a fresh one.
func (h *TrackingHandler) scopeFor(w http.ResponseWriter, r *http.Request) *scope {
	if sc, ok := r.Context().Value(scopeKey{}).(*scope); ok {
		return sc
	}
	return h.newScope(w, r)
}

// tagProject attributes the current page view to a project.
func tagProject(ctx context.Context, id int64) {
	if sc, ok := ctx.Value(scopeKey{}).(*scope); ok {
		sc.projectID = &id
	}
}

// statusWriter remembers the status code the page wrote.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// PageViews records one page view per completed page request that answered
// below 400. The session cookie is pinned before the page writes its body;
// the view is sent once the page handler returns.
func (h *TrackingHandler) PageViews(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := h.newScope(w, r)
		mount := !sc.store.has(services.SessionKey)
		sessionID := sc.sessions.GetOrCreateSessionID()

		sw := &statusWriter{ResponseWriter: w}
		ctx := context.WithValue(r.Context(), scopeKey{}, sc)
		next.ServeHTTP(sw, r.WithContext(ctx))

		path := r.URL.RequestURI()
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		if sw.status >= http.StatusBadRequest {
			logging.Debug().
				Str("session_id", sessionID).
				Str("path", path).
				Int("status", sw.status).
				Msg("page view skipped")
			return
		}

		sc.tracker.TrackPageView(ctx, path, sc.projectID)
		logging.Debug().
			Str("session_id", sessionID).
			Str("path", path).
			Bool("mount", mount).
			Msg("page view")
	})
}

// Out records an outbound click and then redirects. It waits a short while
// for the send so the event is not lost when the browser leaves.
func (h *TrackingHandler) Out(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, ok := redirectTarget(q.Get("url"))
	if !ok {
		http.Error(w, "Invalid link", http.StatusBadRequest)
		return
	}
	linkType := domain.LinkType(q.Get("type"))
	if linkType == "" {
		linkType = "external"
	}
	projectID := parseProjectID(q.Get("project"))

	sc := h.scopeFor(w, r)
	done := sc.tracker.TrackLinkClick(r.Context(), linkType, target, projectID)
	select {
	case <-done:
	case <-time.After(h.flushTimeout):
	case <-r.Context().Done():
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// redirectTarget accepts absolute http(s) URLs and site-relative paths.
func redirectTarget(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\") {
		return raw, true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

func parseProjectID(raw string) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// ClickRequest payload
type ClickRequest struct {
	LinkType  string `json:"linkType" validate:"required,max=64"`
	URL       string `json:"url" validate:"required,max=2048"`
	ProjectID *int64 `json:"projectId"`
}

// Click records a client-side link click. The answer does not depend on
// whether the event reached the ingestion endpoint.
func (h *TrackingHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	sc := h.scopeFor(w, r)
	sc.tracker.TrackLinkClick(r.Context(), domain.LinkType(req.LinkType), req.URL, req.ProjectID)
	w.WriteHeader(http.StatusAccepted)
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=dark light"`
}

func (h *TrackingHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	sc := h.scopeFor(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"theme": sc.prefs.Theme()})
}

func (h *TrackingHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	sc := h.scopeFor(w, r)
	if err := sc.prefs.SetTheme(req.Theme); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid theme")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
