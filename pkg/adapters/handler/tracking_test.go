package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/services"
)

// chanSink hands every sent event to the test.
type chanSink struct {
	events chan domain.AnalyticsEvent
	err    error
}

func newChanSink(err error) *chanSink {
	return &chanSink{events: make(chan domain.AnalyticsEvent, 16), err: err}
}

func (s *chanSink) Send(ctx context.Context, event domain.AnalyticsEvent) error {
	s.events <- event
	return s.err
}

func (s *chanSink) next(t *testing.T) domain.AnalyticsEvent {
	t.Helper()
	select {
	case e := <-s.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event sent")
		return domain.AnalyticsEvent{}
	}
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == services.SessionKey {
			return c
		}
	}
	return nil
}

func TestPageViewsFirstVisit(t *testing.T) {
	sink := newChanSink(nil)
	th := NewTrackingHandler(sink, false, 100*time.Millisecond)
	page := th.PageViews(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/projects?tab=all", nil)
	req.Header.Set("Referer", "https://www.google.com/")
	rr := httptest.NewRecorder()
	page.ServeHTTP(rr, req)

	cookie := sessionCookie(rr)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie on first visit")
	}
	if !cookie.HttpOnly || cookie.Path != "/" {
		t.Errorf("unexpected cookie attributes: %+v", cookie)
	}

	event := sink.next(t)
	if event.Type != domain.EventPageView {
		t.Errorf("type = %q, want pageview", event.Type)
	}
	if event.Data.Path != "/projects?tab=all" {
		t.Errorf("path = %q", event.Data.Path)
	}
	if event.Data.Referrer == nil || *event.Data.Referrer != "https://www.google.com/" {
		t.Errorf("referrer = %v", event.Data.Referrer)
	}
	if event.Data.SessionID != cookie.Value {
		t.Errorf("event session %q does not match cookie %q", event.Data.SessionID, cookie.Value)
	}
	if event.Data.ProjectID != nil {
		t.Errorf("projectId = %d, want nil", *event.Data.ProjectID)
	}
}

func TestPageViewsReturningVisitor(t *testing.T) {
	sink := newChanSink(nil)
	th := NewTrackingHandler(sink, false, 100*time.Millisecond)
	page := th.PageViews(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/about", nil)
	req.AddCookie(&http.Cookie{Name: services.SessionKey, Value: "existing-session"})
	rr := httptest.NewRecorder()
	page.ServeHTTP(rr, req)

	if c := sessionCookie(rr); c != nil {
		t.Errorf("session cookie rewritten for returning visitor: %q", c.Value)
	}
	event := sink.next(t)
	if event.Data.SessionID != "existing-session" {
		t.Errorf("session = %q, want existing-session", event.Data.SessionID)
	}
	if event.Data.Referrer == nil || *event.Data.Referrer != "" {
		t.Errorf("referrer = %v, want empty string", event.Data.Referrer)
	}
}

func TestPageViewsTaggedProject(t *testing.T) {
	sink := newChanSink(nil)
	th := NewTrackingHandler(sink, false, 100*time.Millisecond)
	page := th.PageViews(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tagProject(r.Context(), 42)
	}))

	rr := httptest.NewRecorder()
	page.ServeHTTP(rr, httptest.NewRequest("GET", "/projects/portfolio-site", nil))

	event := sink.next(t)
	if event.Data.ProjectID == nil || *event.Data.ProjectID != 42 {
		t.Errorf("projectId = %v, want 42", event.Data.ProjectID)
	}
}

func TestPageViewsSkipErrorResponses(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			sink := newChanSink(nil)
			th := NewTrackingHandler(sink, false, 100*time.Millisecond)
			page := th.PageViews(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, status, "nope")
			}))

			rr := httptest.NewRecorder()
			page.ServeHTTP(rr, httptest.NewRequest("GET", "/projects/nope", nil))

			if rr.Code != status {
				t.Fatalf("status = %d, want %d", rr.Code, status)
			}
			if sessionCookie(rr) == nil {
				t.Error("session cookie not set on an error page")
			}
			select {
			case e := <-sink.events:
				t.Errorf("page view sent for status %d: %+v", status, e.Data)
			case <-time.After(100 * time.Millisecond):
			}
		})
	}
}

func TestOut(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLoc    string
		wantType   domain.LinkType
		wantProj   *int64
	}{
		{
			name:       "github link",
			query:      "?type=github&url=https://github.com/someone&project=7",
			wantStatus: http.StatusFound,
			wantLoc:    "https://github.com/someone",
			wantType:   domain.LinkGithub,
			wantProj:   ptr(int64(7)),
		},
		{
			name:       "internal path",
			query:      "?type=project_detail&url=/projects/site",
			wantStatus: http.StatusFound,
			wantLoc:    "/projects/site",
			wantType:   domain.LinkProjectDetail,
		},
		{
			name:       "missing type",
			query:      "?url=https://example.com",
			wantStatus: http.StatusFound,
			wantLoc:    "https://example.com",
			wantType:   "external",
		},
		{name: "no url", query: "?type=github", wantStatus: http.StatusBadRequest},
		{name: "javascript scheme", query: "?url=javascript:alert(1)", wantStatus: http.StatusBadRequest},
		{name: "protocol relative", query: "?url=//evil.example", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newChanSink(nil)
			th := NewTrackingHandler(sink, false, time.Second)

			rr := httptest.NewRecorder()
			th.Out(rr, httptest.NewRequest("GET", "/out"+tt.query, nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusFound {
				select {
				case e := <-sink.events:
					t.Errorf("unexpected event for rejected link: %+v", e)
				default:
				}
				return
			}
			if loc := rr.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
			// Out waits for the send, so the event is already there.
			select {
			case e := <-sink.events:
				if e.Type != domain.EventClick || e.Data.LinkType != tt.wantType || e.Data.URL != tt.wantLoc {
					t.Errorf("unexpected click event: %+v", e)
				}
				if (tt.wantProj == nil) != (e.Data.ProjectID == nil) ||
					(tt.wantProj != nil && *tt.wantProj != *e.Data.ProjectID) {
					t.Errorf("projectId = %v, want %v", e.Data.ProjectID, tt.wantProj)
				}
			default:
				t.Error("click not dispatched before redirect")
			}
		})
	}
}

func TestClickAcceptedWhenSinkFails(t *testing.T) {
	sink := newChanSink(errors.New("ingestion down"))
	th := NewTrackingHandler(sink, false, time.Second)

	body := `{"linkType":"resume","url":"https://example.com/cv.pdf","projectId":null}`
	req := httptest.NewRequest("POST", "/api/v1/track/click", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: services.SessionKey, Value: "s-1"})
	rr := httptest.NewRecorder()
	th.Click(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	event := sink.next(t)
	if event.Data.SessionID != "s-1" || event.Data.LinkType != domain.LinkResume {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestClickValidation(t *testing.T) {
	th := NewTrackingHandler(newChanSink(nil), false, time.Second)

	for _, body := range []string{`not json`, `{"url":"https://example.com"}`, `{"linkType":"github"}`} {
		rr := httptest.NewRecorder()
		th.Click(rr, httptest.NewRequest("POST", "/api/v1/track/click", strings.NewReader(body)))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rr.Code)
		}
	}
}

func TestThemePreference(t *testing.T) {
	th := NewTrackingHandler(newChanSink(nil), false, time.Second)

	rr := httptest.NewRecorder()
	th.GetPreferences(rr, httptest.NewRequest("GET", "/api/v1/preferences", nil))
	if !strings.Contains(rr.Body.String(), `"theme":"dark"`) {
		t.Errorf("default theme: got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	th.SetTheme(rr, httptest.NewRequest("POST", "/api/v1/preferences/theme", strings.NewReader(`{"theme":"light"}`)))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	var theme *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == services.ThemeKey {
			theme = c
		}
	}
	if theme == nil || theme.Value != "light" {
		t.Fatalf("theme cookie = %+v", theme)
	}

	req := httptest.NewRequest("GET", "/api/v1/preferences", nil)
	req.AddCookie(theme)
	rr = httptest.NewRecorder()
	th.GetPreferences(rr, req)
	if !strings.Contains(rr.Body.String(), `"theme":"light"`) {
		t.Errorf("stored theme: got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	th.SetTheme(rr, httptest.NewRequest("POST", "/api/v1/preferences/theme", strings.NewReader(`{"theme":"sepia"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid theme: status = %d, want 400", rr.Code)
	}
}

func ptr[T any](v T) *T { return &v }
