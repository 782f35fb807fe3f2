package handler

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

const (
	stateContent = "content"
	stateEmpty   = "empty"
	stateError   = "error"
)

// PageView is what a page controller hands to the renderer.
type PageView struct {
	Page    string `json:"page"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type PageHandler struct {
	service ports.ContentService
}

func NewPageHandler(service ports.ContentService) *PageHandler {
	return &PageHandler{service: service}
}

func renderError(w http.ResponseWriter, page string) {
	writeJSON(w, http.StatusInternalServerError, PageView{Page: page, State: stateError, Message: genericError})
}

func renderEmpty(w http.ResponseWriter, status int, page, message string) {
	writeJSON(w, status, PageView{Page: page, State: stateEmpty, Message: message})
}

func renderContent(w http.ResponseWriter, page string, data any) {
	writeJSON(w, http.StatusOK, PageView{Page: page, State: stateContent, Data: data})
}

type homeData struct {
	FeaturedProjects []domain.Project `json:"featured_projects"`
	Skills           []domain.Skill   `json:"skills"`
}

// Home loads featured projects and skills concurrently. Either failure
// fails the page.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	var data homeData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		data.FeaturedProjects, err = h.service.ListProjects(ctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		data.Skills, err = h.service.ListSkillsByCategory(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		renderError(w, "home")
		return
	}
	renderContent(w, "home", data)
}

func (h *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context(), false)
	if err != nil {
		renderError(w, "projects")
		return
	}
	if len(projects) == 0 {
		renderEmpty(w, http.StatusOK, "projects", "No projects yet.")
		return
	}
	renderContent(w, "projects", map[string]any{"projects": projects})
}

func (h *PageHandler) Project(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	project, err := h.service.GetProjectWithSkills(r.Context(), slug)
	if err != nil {
		renderError(w, "project")
		return
	}
	if project == nil {
		renderEmpty(w, http.StatusNotFound, "project", "Project not found.")
		return
	}
	tagProject(r.Context(), project.ID)
	renderContent(w, "project", map[string]any{"project": project})
}

type skillsData struct {
	Skills     []domain.Skill         `json:"skills"`
	Categories []domain.SkillCategory `json:"categories"`
}

func (h *PageHandler) Skills(w http.ResponseWriter, r *http.Request) {
	var data skillsData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		data.Skills, err = h.service.ListSkillsByCategory(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Categories, err = h.service.ListCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		renderError(w, "skills")
		return
	}
	if len(data.Skills) == 0 {
		renderEmpty(w, http.StatusOK, "skills", "No skills listed yet.")
		return
	}
	renderContent(w, "skills", data)
}

type aboutData struct {
	Profile *domain.Profile `json:"profile"`
	Stats   *domain.Stats   `json:"stats,omitempty"`
}

// About shows the profile and, when there is one, the latest stats record.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	var data aboutData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		data.Profile, err = h.service.GetProfile(ctx)
		return err
	})
	g.Go(func() error {
		stats, err := h.service.GetStats(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		data.Stats = stats
		return err
	})
	if err := g.Wait(); err != nil {
		renderError(w, "about")
		return
	}
	if data.Profile == nil {
		renderEmpty(w, http.StatusOK, "about", "Profile coming soon.")
		return
	}
	renderContent(w, "about", data)
}

func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	renderContent(w, "contact", map[string]any{
		"action": "/api/v1/contact",
		"fields": []string{"name", "email", "subject", "message"},
	})
}
