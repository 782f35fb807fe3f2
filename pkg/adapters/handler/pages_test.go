package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
)

func decodePage(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return v
}

func TestHomePage(t *testing.T) {
	content := &fakeContent{
		projects: []domain.Project{
			{ID: 1, Slug: "a", IsFeatured: true, IsPublished: true},
			{ID: 2, Slug: "b", IsPublished: true},
		},
		skills: []domain.Skill{{ID: 1, Name: "Go"}},
	}
	pages := NewPageHandler(content)

	rr := httptest.NewRecorder()
	pages.Home(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	v := decodePage(t, rr)
	if v["state"] != stateContent || v["page"] != "home" {
		t.Fatalf("unexpected view: %v", v)
	}
	data := v["data"].(map[string]any)
	if featured := data["featured_projects"].([]any); len(featured) != 1 {
		t.Errorf("featured projects = %d, want 1", len(featured))
	}
	if skills := data["skills"].([]any); len(skills) != 1 {
		t.Errorf("skills = %d, want 1", len(skills))
	}
}

func TestHomePageFailsWhole(t *testing.T) {
	tests := []struct {
		name    string
		content *fakeContent
	}{
		{"projects fail", &fakeContent{projectsErr: errors.New("boom"), skills: []domain.Skill{{ID: 1}}}},
		{"skills fail", &fakeContent{projects: []domain.Project{{ID: 1, IsFeatured: true}}, skillsErr: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewPageHandler(tt.content).Home(rr, httptest.NewRequest("GET", "/", nil))
			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rr.Code)
			}
			v := decodePage(t, rr)
			if v["state"] != stateError || v["message"] != genericError {
				t.Errorf("unexpected view: %v", v)
			}
			if _, ok := v["data"]; ok {
				t.Error("failed page must not carry partial data")
			}
		})
	}
}

func TestProjectPage(t *testing.T) {
	content := &fakeContent{project: &domain.Project{ID: 9, Slug: "portfolio-site", IsPublished: true}}
	pages := NewPageHandler(content)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/{slug}", pages.Project)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/projects/portfolio-site", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/projects/nonexistent", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if v := decodePage(t, rr); v["state"] != stateEmpty {
		t.Errorf("state = %v, want empty", v["state"])
	}
}

func TestProjectsPageEmpty(t *testing.T) {
	rr := httptest.NewRecorder()
	NewPageHandler(&fakeContent{}).Projects(rr, httptest.NewRequest("GET", "/projects", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if v := decodePage(t, rr); v["state"] != stateEmpty {
		t.Errorf("state = %v, want empty", v["state"])
	}
}

func TestAboutPage(t *testing.T) {
	profile := &domain.Profile{ID: 1, FullName: "Gift"}

	t.Run("no stats yet", func(t *testing.T) {
		content := &fakeContent{profile: profile, statsErr: &domain.NotFoundError{Entity: "stats"}}
		rr := httptest.NewRecorder()
		NewPageHandler(content).About(rr, httptest.NewRequest("GET", "/about", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		v := decodePage(t, rr)
		data := v["data"].(map[string]any)
		if _, ok := data["stats"]; ok {
			t.Error("stats present although none exist")
		}
	})

	t.Run("stats backend failure", func(t *testing.T) {
		content := &fakeContent{profile: profile, statsErr: &domain.BackendError{Operation: "getStats", Err: errors.New("down")}}
		rr := httptest.NewRecorder()
		NewPageHandler(content).About(rr, httptest.NewRequest("GET", "/about", nil))
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rr.Code)
		}
	})

	t.Run("no profile", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewPageHandler(&fakeContent{stats: &domain.Stats{ID: 1}}).About(rr, httptest.NewRequest("GET", "/about", nil))
		if v := decodePage(t, rr); v["state"] != stateEmpty {
			t.Errorf("state = %v, want empty", v["state"])
		}
	})
}
