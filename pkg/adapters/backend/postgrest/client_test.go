package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

type captured struct {
	method string
	path   string
	query  string
	auth   string
	apikey string
	prefer string
	body   map[string]any
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.apikey = r.Header.Get("apikey")
		got.prefer = r.Header.Get("Prefer")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			var v any
			_ = json.Unmarshal(b, &v)
			if m, ok := v.(map[string]any); ok {
				got.body = m
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetProjectsRPC(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"id":1,"title":"Site","slug":"site","is_published":true,
		"project_images":[{"id":3,"image_url":"a.png","caption":null,"sort_order":1}]}]`, &got)
	c := NewClient(srv.URL+"/", "anon", 5*time.Second)

	projects, err := c.GetProjects(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if got.method != http.MethodPost || got.path != "/rest/v1/rpc/get_projects" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if got.body["_featured_only"] != true {
		t.Errorf("args = %v", got.body)
	}
	if got.auth != "Bearer anon" || got.apikey != "anon" {
		t.Errorf("auth = %q apikey = %q", got.auth, got.apikey)
	}
	if len(projects) != 1 || projects[0].Slug != "site" || len(projects[0].ProjectImages) != 1 {
		t.Errorf("projects = %+v", projects)
	}
}

func TestRPCArgumentNames(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		path string
		arg  string
		want any
	}{
		{
			name: "project by slug",
			call: func(c *Client) error { _, err := c.GetProjectBySlug(context.Background(), "site"); return err },
			path: "/rest/v1/rpc/get_project_by_slug",
			arg:  "_slug",
			want: "site",
		},
		{
			name: "project with skills",
			call: func(c *Client) error { _, err := c.GetProjectWithSkills(context.Background(), "site"); return err },
			path: "/rest/v1/rpc/get_project_with_skills",
			arg:  "project_slug",
			want: "site",
		},
		{
			name: "all projects",
			call: func(c *Client) error { _, err := c.GetAllProjectsWithSkills(context.Background(), true); return err },
			path: "/rest/v1/rpc/get_all_projects_with_skills",
			arg:  "include_unpublished",
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got captured
			srv := newServer(t, http.StatusOK, `[]`, &got)
			if err := tt.call(NewClient(srv.URL, "anon", time.Second)); err != nil {
				t.Fatal(err)
			}
			if got.path != tt.path {
				t.Errorf("path = %q, want %q", got.path, tt.path)
			}
			if got.body[tt.arg] != tt.want {
				t.Errorf("%s = %v, want %v", tt.arg, got.body[tt.arg], tt.want)
			}
		})
	}
}

func TestEmptyResultIsEmptySlice(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[]`, &got)
	projects, err := NewClient(srv.URL, "anon", time.Second).GetProjectBySlug(context.Background(), "nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if projects == nil || len(projects) != 0 {
		t.Errorf("got %v, want empty slice", projects)
	}
}

func TestSelectLatestProfileQuery(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"id":1,"full_name":"Gift","additional_info":{"a":1}}]`, &got)
	profiles, err := NewClient(srv.URL, "anon", time.Second).SelectLatestProfile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.method != http.MethodGet || got.path != "/rest/v1/profile" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if want := "limit=1&order=updated_at.desc.nullslast%2Cid.asc&select=%2A"; got.query != want {
		t.Errorf("query = %q, want %q", got.query, want)
	}
	if len(profiles) != 1 || string(profiles[0].AdditionalInfo) != `{"a":1}` {
		t.Errorf("profiles = %+v", profiles)
	}
}

func TestInsertMessage(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusCreated, `[{"id":12,"name":"Ada","email":"ada@example.com","subject":"","message":"Hi","created_at":"2024-01-01T00:00:00Z"}]`, &got)
	msg, err := NewClient(srv.URL, "anon", time.Second).InsertMessage(context.Background(), rows.Message{
		Name: "Ada", Email: "ada@example.com", Message: "Hi", CreatedAt: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.path != "/rest/v1/messages" || got.prefer != "return=representation" {
		t.Errorf("path = %q prefer = %q", got.path, got.prefer)
	}
	if msg.ID != 12 {
		t.Errorf("id = %d", msg.ID)
	}
}

func TestAPIError(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusUnauthorized, `{"code":"PGRST301","message":"JWT expired","details":null,"hint":null}`, &got)
	_, err := NewClient(srv.URL, "anon", time.Second).SelectCategories(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "PGRST301" {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestMissingBaseURL(t *testing.T) {
	_, err := NewClient("", "anon", time.Second).GetSkillsByCategory(context.Background())
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) || cerr.Key != "SUPABASE_URL" {
		t.Errorf("got %v, want ConfigError for SUPABASE_URL", err)
	}
}

func TestPrincipalTokenAndServiceKey(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `true`, &got)
	c := NewClient(srv.URL, "anon", time.Second)

	ctx := ports.WithPrincipal(context.Background(), ports.Principal{Subject: "u1", AccessToken: "user-jwt"})
	ok, err := c.IsAdmin(ctx)
	if err != nil || !ok {
		t.Fatalf("is_admin = %v, %v", ok, err)
	}
	if got.auth != "Bearer user-jwt" || got.apikey != "anon" {
		t.Errorf("user call: auth = %q apikey = %q", got.auth, got.apikey)
	}

	if _, err := c.WithKey("service").IsAdmin(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got.auth != "Bearer service" || got.apikey != "service" {
		t.Errorf("service call: auth = %q apikey = %q", got.auth, got.apikey)
	}
	if c.apiKey != "anon" {
		t.Error("WithKey modified the original client")
	}

	var listed captured
	listSrv := newServer(t, http.StatusOK, `[]`, &listed)
	service := NewClient(listSrv.URL, "anon", time.Second).WithKey("service")
	if _, err := service.GetAllProjectsWithSkills(ctx, true); err != nil {
		t.Fatal(err)
	}
	if listed.auth != "Bearer service" || listed.apikey != "service" {
		t.Errorf("service call as signed-in user: auth = %q apikey = %q", listed.auth, listed.apikey)
	}
}
