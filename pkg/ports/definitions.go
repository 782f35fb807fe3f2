package ports

import (
	"context"
	"sync"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
)

// Backend is the hosted backend's query and procedure surface.
// Zero rows is an empty slice with a nil error.
type Backend interface {
	// Procedures
	GetProjects(ctx context.Context, featuredOnly bool) ([]rows.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) ([]rows.Project, error)
	GetProjectWithSkills(ctx context.Context, slug string) ([]rows.Project, error)
	GetAllProjectsWithSkills(ctx context.Context, includeUnpublished bool) ([]rows.Project, error)
	GetSkillsByCategory(ctx context.Context) ([]rows.SkillCategoryGroup, error)
	IsAdmin(ctx context.Context) (bool, error)

	// Table reads and writes
	SelectPublishedProjectByID(ctx context.Context, id int64) ([]rows.Project, error)
	SelectCategories(ctx context.Context) ([]rows.Category, error)
	SelectLatestProfile(ctx context.Context) ([]rows.Profile, error)
	SelectLatestStats(ctx context.Context) ([]rows.Stats, error)
	InsertMessage(ctx context.Context, msg rows.Message) (rows.Message, error)
}

// ContentService is the facade the page controllers and API handlers use.
type ContentService interface {
	ListProjects(ctx context.Context, featuredOnly bool) ([]domain.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error)
	GetProjectWithSkills(ctx context.Context, slug string) (*domain.Project, error)
	GetProjectByID(ctx context.Context, id int64) (*domain.Project, error)
	ListAllProjectsWithSkills(ctx context.Context) ([]domain.Project, error)
	ListSkillsByCategory(ctx context.Context) ([]domain.Skill, error)
	ListCategories(ctx context.Context) ([]domain.SkillCategory, error)
	GetProfile(ctx context.Context) (*domain.Profile, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
	SubmitContactMessage(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
	IsAdmin(ctx context.Context) (bool, error)
}

// EventSink delivers one analytics event, one attempt.
type EventSink interface {
	Send(ctx context.Context, event domain.AnalyticsEvent) error
}

// EventStore persists events received by the local ingestion endpoint.
type EventStore interface {
	RecordEvent(ctx context.Context, event *domain.StoredEvent) error
	GetAnalyticsSummary(ctx context.Context, limit int) (*domain.AnalyticsSummary, error)
}

// KeyValueStore is persisted client state (browser storage, a cookie jar).
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// BrowsingContext exposes what the browser knows about the current view.
type BrowsingContext interface {
	Referrer() string
}

// Principal is the authenticated caller, when there is one.
type Principal struct {
	Subject     string
	AccessToken string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// MemoryStore is a KeyValueStore held in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// StaticReferrer is a BrowsingContext with a fixed referrer.
type StaticReferrer string

func (s StaticReferrer) Referrer() string { return string(s) }
