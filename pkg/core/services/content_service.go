package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/normalize"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/metrics"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

type ContentService struct {
	backend ports.Backend
	now     func() time.Time
}

func NewContentService(backend ports.Backend) *ContentService {
	return &ContentService{backend: backend, now: time.Now}
}

// call runs one backend operation and turns any failure into a BackendError.
func call[T any](ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	started := time.Now()
	res, err := fn(ctx)
	metrics.RecordBackendCall(op, started, err)
	if err != nil {
		logging.Error().Err(err).Str("operation", op).Msg("backend call failed")
		var zero T
		return zero, &domain.BackendError{Operation: op, Err: err}
	}
	return res, nil
}

func shapeFailure(op string, err error) error {
	logging.Error().Err(err).Str("operation", op).Msg("backend returned malformed data")
	return &domain.BackendError{Operation: op, Err: err}
}

// ListProjects returns published projects, featured first and then most
// recently finished first. Projects without an end date sort last.
func (s *ContentService) ListProjects(ctx context.Context, featuredOnly bool) ([]domain.Project, error) {
	const op = "listProjects"
	raw, err := call(ctx, op, func(ctx context.Context) ([]rows.Project, error) {
		return s.backend.GetProjects(ctx, featuredOnly)
	})
	if err != nil {
		return nil, err
	}
	projects, err := normalize.Projects(raw)
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	return orderProjects(filterProjects(projects, featuredOnly)), nil
}

func (s *ContentService) ListAllProjectsWithSkills(ctx context.Context) ([]domain.Project, error) {
	const op = "listAllProjectsWithSkills"
	raw, err := call(ctx, op, func(ctx context.Context) ([]rows.Project, error) {
		return s.backend.GetAllProjectsWithSkills(ctx, false)
	})
	if err != nil {
		return nil, err
	}
	projects, err := normalize.Projects(raw)
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	return orderProjects(filterProjects(projects, false)), nil
}

func filterProjects(projects []domain.Project, featuredOnly bool) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if !p.IsPublished {
			continue
		}
		if featuredOnly && !p.IsFeatured {
			continue
		}
		out = append(out, p)
	}
	return out
}

func orderProjects(projects []domain.Project) []domain.Project {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
		switch {
		case a.EndDate == nil:
			return false
		case b.EndDate == nil:
			return true
		default:
			return a.EndDate.After(*b.EndDate)
		}
	})
	return projects
}

// GetProjectBySlug returns nil, nil when no published project has the slug.
func (s *ContentService) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	const op = "getProjectBySlug"
	raw, err := call(ctx, op, func(ctx context.Context) ([]rows.Project, error) {
		return s.backend.GetProjectBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return firstPublished(op, raw, func(p domain.Project) bool { return p.Slug == slug })
}

func (s *ContentService) GetProjectWithSkills(ctx context.Context, slug string) (*domain.Project, error) {
	const op = "getProjectWithSkills"
	raw, err := call(ctx, op, func(ctx context.Context) ([]rows.Project, error) {
		return s.backend.GetProjectWithSkills(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return firstPublished(op, raw, func(p domain.Project) bool { return p.Slug == slug })
}

func (s *ContentService) GetProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	const op = "getProjectById"
	raw, err := call(ctx, op, func(ctx context.Context) ([]rows.Project, error) {
		return s.backend.SelectPublishedProjectByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return firstPublished(op, raw, func(p domain.Project) bool { return p.ID == id })
}

func firstPublished(op string, raw []rows.Project, match func(domain.Project) bool) (*domain.Project, error) {
	for _, r := range raw {
		p, err := normalize.Project(r)
		if err != nil {
			return nil, shapeFailure(op, err)
		}
		if p.IsPublished && match(p) {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *ContentService) ListSkillsByCategory(ctx context.Context) ([]domain.Skill, error) {
	const op = "listSkillsByCategory"
	raw, err := call(ctx, op, s.backend.GetSkillsByCategory)
	if err != nil {
		return nil, err
	}
	skills, err := normalize.SkillsByCategory(raw)
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	return skills, nil
}

// ListCategories returns categories ordered by name.
func (s *ContentService) ListCategories(ctx context.Context) ([]domain.SkillCategory, error) {
	raw, err := call(ctx, "listCategories", s.backend.SelectCategories)
	if err != nil {
		return nil, err
	}
	categories := normalize.Categories(raw)
	sort.SliceStable(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

// GetProfile returns the most recently updated profile, or nil if there is
// none.
func (s *ContentService) GetProfile(ctx context.Context) (*domain.Profile, error) {
	const op = "getProfile"
	raw, err := call(ctx, op, s.backend.SelectLatestProfile)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	profile, err := normalize.Profile(raw[0])
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	return &profile, nil
}

// GetStats returns the newest stats record. An empty table is a
// NotFoundError.
func (s *ContentService) GetStats(ctx context.Context) (*domain.Stats, error) {
	const op = "getStats"
	raw, err := call(ctx, op, s.backend.SelectLatestStats)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &domain.NotFoundError{Entity: "stats"}
	}
	stats, err := normalize.Stats(raw[0])
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	return &stats, nil
}

// SubmitContactMessage stores one message as given. Validation belongs to
// the caller.
func (s *ContentService) SubmitContactMessage(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	const op = "submitContactMessage"
	row := normalize.MessageRow(domain.ContactMessage{
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		CreatedAt: s.now(),
	})
	saved, err := call(ctx, op, func(ctx context.Context) (rows.Message, error) {
		return s.backend.InsertMessage(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	msg, err := normalize.ContactMessage(saved)
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	logging.Info().Int64("message_id", msg.ID).Msg("contact message stored")
	return &msg, nil
}

func (s *ContentService) IsAdmin(ctx context.Context) (bool, error) {
	return call(ctx, "isAdmin", s.backend.IsAdmin)
}

// Ensure interface compliance
var _ ports.ContentService = (*ContentService)(nil)
