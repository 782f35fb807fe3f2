// Package postgrest talks to the hosted backend's REST surface: table reads
// under /rest/v1/{table} and procedures under /rest/v1/rpc/{name}.
package postgrest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

const projectSelect = `*,project_images(id,image_url,caption,sort_order),` +
	`project_skills(skills!inner(id,name,icon_url,proficiency_level,category_id,tech_categories!inner(id,name)))`

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	// ownKey makes every request use apiKey, even with a caller in the context.
	ownKey bool
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithKey returns a client that authenticates with key instead, e.g. the
// service-role key for server-side reads that bypass row-level security.
// The returned client never forwards the caller's token.
func (c *Client) WithKey(key string) *Client {
	clone := *c
	clone.apiKey = key
	clone.ownKey = true
	return &clone
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s (%s)", e.Status, e.Message, e.Code)
}

func (c *Client) rpc(ctx context.Context, name string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return errors.Wrapf(err, "encode %s args", name)
	}
	return c.do(ctx, http.MethodPost, "/rest/v1/rpc/"+name, nil, body, nil, out)
}

func (c *Client) selectRows(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, "/rest/v1/"+table, query, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, header http.Header, out any) error {
	if c.baseURL == "" {
		return &domain.ConfigError{Key: "SUPABASE_URL"}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

// bearer prefers the signed-in caller's token so row-level security sees
// the user; otherwise, or on a WithKey client, the client's own key is used.
func (c *Client) bearer(ctx context.Context) string {
	if c.ownKey {
		return c.apiKey
	}
	if p, ok := ports.PrincipalFrom(ctx); ok && p.AccessToken != "" {
		return p.AccessToken
	}
	return c.apiKey
}

func (c *Client) GetProjects(ctx context.Context, featuredOnly bool) ([]rows.Project, error) {
	var out []rows.Project
	err := c.rpc(ctx, "get_projects", map[string]any{"_featured_only": featuredOnly}, &out)
	return out, err
}

func (c *Client) GetProjectBySlug(ctx context.Context, slug string) ([]rows.Project, error) {
	var out []rows.Project
	err := c.rpc(ctx, "get_project_by_slug", map[string]any{"_slug": slug}, &out)
	return out, err
}

func (c *Client) GetProjectWithSkills(ctx context.Context, slug string) ([]rows.Project, error) {
	var out []rows.Project
	err := c.rpc(ctx, "get_project_with_skills", map[string]any{"project_slug": slug}, &out)
	return out, err
}

func (c *Client) GetAllProjectsWithSkills(ctx context.Context, includeUnpublished bool) ([]rows.Project, error) {
	var out []rows.Project
	err := c.rpc(ctx, "get_all_projects_with_skills", map[string]any{"include_unpublished": includeUnpublished}, &out)
	return out, err
}

func (c *Client) GetSkillsByCategory(ctx context.Context) ([]rows.SkillCategoryGroup, error) {
	var out []rows.SkillCategoryGroup
	err := c.rpc(ctx, "get_skills_by_category", nil, &out)
	return out, err
}

func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var out bool
	err := c.rpc(ctx, "is_admin", nil, &out)
	return out, err
}

func (c *Client) SelectPublishedProjectByID(ctx context.Context, id int64) ([]rows.Project, error) {
	q := url.Values{}
	q.Set("select", projectSelect)
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("is_published", "eq.true")
	q.Set("limit", "1")
	var out []rows.Project
	err := c.selectRows(ctx, "projects", q, &out)
	return out, err
}

func (c *Client) SelectCategories(ctx context.Context) ([]rows.Category, error) {
	q := url.Values{}
	q.Set("select", "id,name,description,icon_url")
	q.Set("order", "name.asc")
	var out []rows.Category
	err := c.selectRows(ctx, "tech_categories", q, &out)
	return out, err
}

func (c *Client) SelectLatestProfile(ctx context.Context) ([]rows.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "updated_at.desc.nullslast,id.asc")
	q.Set("limit", "1")
	var out []rows.Profile
	err := c.selectRows(ctx, "profile", q, &out)
	return out, err
}

func (c *Client) SelectLatestStats(ctx context.Context) ([]rows.Stats, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	q.Set("limit", "1")
	var out []rows.Stats
	err := c.selectRows(ctx, "stats", q, &out)
	return out, err
}

func (c *Client) InsertMessage(ctx context.Context, msg rows.Message) (rows.Message, error) {
	body, err := json.Marshal([]rows.Message{msg})
	if err != nil {
		return rows.Message{}, errors.Wrap(err, "encode message")
	}
	header := http.Header{}
	header.Set("Prefer", "return=representation")

	var out []rows.Message
	if err := c.do(ctx, http.MethodPost, "/rest/v1/messages", nil, body, header, &out); err != nil {
		return rows.Message{}, err
	}
	if len(out) == 0 {
		return rows.Message{}, errors.New("insert returned no row")
	}
	return out[0], nil
}

// Ensure interface compliance
var _ ports.Backend = (*Client)(nil)
