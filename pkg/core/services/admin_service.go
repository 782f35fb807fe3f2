package services

import (
	"context"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/normalize"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// AdminService backs the admin area. Its backend runs with elevated
// privileges and so sees unpublished projects; nothing here is served to
// anonymous visitors.
type AdminService struct {
	backend ports.Backend
	events  ports.EventStore
}

// NewAdminService takes the privileged backend and, when analytics are stored
// locally, the event store. events may be nil.
func NewAdminService(backend ports.Backend, events ports.EventStore) *AdminService {
	return &AdminService{backend: backend, events: events}
}

// ListProjects returns every project, published or not, in display order.
func (s *AdminService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const op = "adminListProjects"
	raw, err := call(ctx, op, func(ctx context.Context) ([]rows.Project, error) {
		return s.backend.GetAllProjectsWithSkills(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	projects, err := normalize.Projects(raw)
	if err != nil {
		return nil, shapeFailure(op, err)
	}
	return orderProjects(projects), nil
}

// AnalyticsSummary returns nil, nil when no event store is configured.
func (s *AdminService) AnalyticsSummary(ctx context.Context, limit int) (*domain.AnalyticsSummary, error) {
	if s.events == nil {
		return nil, nil
	}
	return call(ctx, "analyticsSummary", func(ctx context.Context) (*domain.AnalyticsSummary, error) {
		return s.events.GetAnalyticsSummary(ctx, limit)
	})
}
