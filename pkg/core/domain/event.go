package domain

import "time"

type EventKind string

const (
	EventPageView EventKind = "pageview"
	EventClick    EventKind = "click"
)

// LinkType names the kind of outbound or internal link that was clicked.
// The set is open; these are the ones the site emits.
type LinkType string

const (
	LinkGithub         LinkType = "github"
	LinkLinkedin       LinkType = "linkedin"
	LinkResume         LinkType = "resume"
	LinkProjectDetail  LinkType = "project_detail"
	LinkLiveDemo       LinkType = "live_demo"
	LinkBackToProjects LinkType = "back_to_projects"
)

// AnalyticsEvent is the envelope posted to the ingestion endpoint.
type AnalyticsEvent struct {
	Type EventKind `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries both payload shapes; fields that do not belong to the
// event kind are left empty and omitted.
type EventData struct {
	Path      string   `json:"path,omitempty"`
	Referrer  *string  `json:"referrer,omitempty"`
	LinkType  LinkType `json:"linkType,omitempty"`
	URL       string   `json:"url,omitempty"`
	ProjectID *int64   `json:"projectId"`
	SessionID string   `json:"sessionId"`
}

func NewPageView(sessionID, path, referrer string, projectID *int64) AnalyticsEvent {
	return AnalyticsEvent{
		Type: EventPageView,
		Data: EventData{
			Path:      path,
			Referrer:  &referrer,
			ProjectID: projectID,
			SessionID: sessionID,
		},
	}
}

func NewClick(sessionID string, linkType LinkType, url string, projectID *int64) AnalyticsEvent {
	return AnalyticsEvent{
		Type: EventClick,
		Data: EventData{
			LinkType:  linkType,
			URL:       url,
			ProjectID: projectID,
			SessionID: sessionID,
		},
	}
}

// StoredEvent is an event as recorded by the local ingestion store.
type StoredEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	SessionID  string    `json:"session_id"`
	Path       string    `json:"path,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	LinkType   LinkType  `json:"link_type,omitempty"`
	URL        string    `json:"url,omitempty"`
	ProjectID  *int64    `json:"project_id,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// AnalyticsSummary aggregates stored events for the admin dashboard.
type AnalyticsSummary struct {
	PageViews      int64              `json:"page_views"`
	Clicks         int64              `json:"clicks"`
	UniqueSessions int64              `json:"unique_sessions"`
	TopPaths       []PathCount        `json:"top_paths"`
	ClicksByType   map[LinkType]int64 `json:"clicks_by_type"`
	DailyViews     []DailyCount       `json:"daily_views"`
}

type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
