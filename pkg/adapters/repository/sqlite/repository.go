package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                                // Local SQLite driver

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

const sqliteTime = "2006-01-02 15:04:05"

// SQLiteRepository is a local stand-in for the hosted backend. It answers the
// same procedures and table reads from a SQLite (or Turso) database and also
// stores events received by the local ingestion endpoint.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driverName)
	}

	// Shared-cache memory databases lock up under concurrent writers.
	if strings.Contains(dbURL, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}

	if err := migrate(db); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS tech_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		icon_url TEXT
	);

	CREATE TABLE IF NOT EXISTS skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		icon_url TEXT,
		proficiency_level INTEGER DEFAULT 0,
		category_id INTEGER NOT NULL,
		FOREIGN KEY(category_id) REFERENCES tech_categories(id)
	);
	CREATE INDEX IF NOT EXISTS idx_skills_category_id ON skills(category_id);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		summary TEXT,
		description TEXT,
		thumbnail_url TEXT,
		github_url TEXT,
		live_url TEXT,
		is_featured INTEGER DEFAULT 0,
		is_published INTEGER DEFAULT 0,
		start_date TEXT,
		end_date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_projects_slug ON projects(slug);

	CREATE TABLE IF NOT EXISTS project_images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		image_url TEXT NOT NULL,
		caption TEXT,
		sort_order INTEGER DEFAULT 0,
		FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS project_skills (
		project_id INTEGER NOT NULL,
		skill_id INTEGER NOT NULL,
		PRIMARY KEY (project_id, skill_id),
		FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY(skill_id) REFERENCES skills(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		title TEXT,
		bio TEXT,
		email TEXT,
		location TEXT,
		github_url TEXT,
		linkedin_url TEXT,
		resume_url TEXT,
		profile_image_url TEXT,
		additional_info JSON,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		certifications_and_badges JSON,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admins (
		subject TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		session_id TEXT NOT NULL,
		path TEXT,
		referrer TEXT,
		link_type TEXT,
		url TEXT,
		project_id INTEGER,
		user_agent TEXT,
		received_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id);
	`
	_, err := db.Exec(query)
	return err
}

const projectColumns = `id, title, slug, summary, description, thumbnail_url, github_url, live_url,
	is_featured, is_published, start_date, end_date`

// queryProjects loads project rows and joins images and skills the way the
// hosted backend nests them.
func (r *SQLiteRepository) queryProjects(ctx context.Context, where string, args ...any) ([]rows.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ` + where
	rs, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	projects := []rows.Project{}
	for rs.Next() {
		var p rows.Project
		var summary, description, thumb, github, live, start, end sql.NullString
		if err := rs.Scan(&p.ID, &p.Title, &p.Slug, &summary, &description, &thumb, &github, &live,
			&p.IsFeatured, &p.IsPublished, &start, &end); err != nil {
			return nil, err
		}
		p.Summary = summary.String
		p.Description = nullString(description)
		p.ThumbnailURL = nullString(thumb)
		p.GithubURL = nullString(github)
		p.LiveURL = nullString(live)
		p.StartDate = nullString(start)
		p.EndDate = nullString(end)
		projects = append(projects, p)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	rs.Close()

	for i := range projects {
		if projects[i].ProjectImages, err = r.projectImages(ctx, projects[i].ID); err != nil {
			return nil, err
		}
		if projects[i].ProjectSkills, err = r.projectSkills(ctx, projects[i].ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (r *SQLiteRepository) projectImages(ctx context.Context, projectID int64) ([]rows.ProjectImage, error) {
	rs, err := r.db.QueryContext(ctx,
		`SELECT id, image_url, caption, sort_order FROM project_images WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var images []rows.ProjectImage
	for rs.Next() {
		var img rows.ProjectImage
		var caption sql.NullString
		if err := rs.Scan(&img.ID, &img.ImageURL, &caption, &img.SortOrder); err != nil {
			return nil, err
		}
		img.Caption = nullString(caption)
		images = append(images, img)
	}
	return images, rs.Err()
}

func (r *SQLiteRepository) projectSkills(ctx context.Context, projectID int64) ([]rows.ProjectSkill, error) {
	rs, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.icon_url, s.proficiency_level, c.id, c.name
		FROM project_skills ps
		JOIN skills s ON s.id = ps.skill_id
		JOIN tech_categories c ON c.id = s.category_id
		WHERE ps.project_id = ?
		ORDER BY s.name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []rows.ProjectSkill
	for rs.Next() {
		var s rows.Skill
		var cat rows.Category
		var icon sql.NullString
		var level int
		if err := rs.Scan(&s.ID, &s.Name, &icon, &level, &cat.ID, &cat.Name); err != nil {
			return nil, err
		}
		s.IconURL = nullString(icon)
		s.ProficiencyLevel = &level
		s.CategoryID = &cat.ID
		s.TechCategories = &cat
		out = append(out, rows.ProjectSkill{Skills: &s})
	}
	return out, rs.Err()
}

func (r *SQLiteRepository) GetProjects(ctx context.Context, featuredOnly bool) ([]rows.Project, error) {
	where := `WHERE is_published = 1`
	if featuredOnly {
		where += ` AND is_featured = 1`
	}
	where += ` ORDER BY is_featured DESC, end_date IS NULL, end_date DESC`
	return r.queryProjects(ctx, where)
}

func (r *SQLiteRepository) GetProjectBySlug(ctx context.Context, slug string) ([]rows.Project, error) {
	return r.queryProjects(ctx, `WHERE slug = ? AND is_published = 1`, slug)
}

func (r *SQLiteRepository) GetProjectWithSkills(ctx context.Context, slug string) ([]rows.Project, error) {
	return r.queryProjects(ctx, `WHERE slug = ? AND is_published = 1`, slug)
}

func (r *SQLiteRepository) GetAllProjectsWithSkills(ctx context.Context, includeUnpublished bool) ([]rows.Project, error) {
	if includeUnpublished {
		return r.queryProjects(ctx, `ORDER BY id`)
	}
	return r.queryProjects(ctx, `WHERE is_published = 1 ORDER BY id`)
}

func (r *SQLiteRepository) SelectPublishedProjectByID(ctx context.Context, id int64) ([]rows.Project, error) {
	return r.queryProjects(ctx, `WHERE id = ? AND is_published = 1`, id)
}

func (r *SQLiteRepository) GetSkillsByCategory(ctx context.Context) ([]rows.SkillCategoryGroup, error) {
	categories, err := r.SelectCategories(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]rows.SkillCategoryGroup, 0, len(categories))
	for _, c := range categories {
		rs, err := r.db.QueryContext(ctx,
			`SELECT id, name, icon_url, proficiency_level FROM skills WHERE category_id = ? ORDER BY name`, c.ID)
		if err != nil {
			return nil, err
		}
		g := rows.SkillCategoryGroup{
			CategoryID:          c.ID,
			CategoryName:        c.Name,
			CategoryDescription: c.Description,
			CategoryIconURL:     c.IconURL,
			Skills:              []rows.Skill{},
		}
		for rs.Next() {
			var s rows.Skill
			var icon sql.NullString
			var level int
			if err := rs.Scan(&s.ID, &s.Name, &icon, &level); err != nil {
				rs.Close()
				return nil, err
			}
			s.IconURL = nullString(icon)
			s.ProficiencyLevel = &level
			g.Skills = append(g.Skills, s)
		}
		err = rs.Err()
		rs.Close()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// IsAdmin checks the principal's subject against the admins table.
func (r *SQLiteRepository) IsAdmin(ctx context.Context) (bool, error) {
	p, ok := ports.PrincipalFrom(ctx)
	if !ok || p.Subject == "" {
		return false, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE subject = ?`, p.Subject).Scan(&n)
	return n > 0, err
}

func (r *SQLiteRepository) SelectCategories(ctx context.Context) ([]rows.Category, error) {
	rs, err := r.db.QueryContext(ctx, `SELECT id, name, description, icon_url FROM tech_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	categories := []rows.Category{}
	for rs.Next() {
		var c rows.Category
		var description, icon sql.NullString
		if err := rs.Scan(&c.ID, &c.Name, &description, &icon); err != nil {
			return nil, err
		}
		c.Description = nullString(description)
		c.IconURL = nullString(icon)
		categories = append(categories, c)
	}
	return categories, rs.Err()
}

func (r *SQLiteRepository) SelectLatestProfile(ctx context.Context) ([]rows.Profile, error) {
	query := `SELECT id, full_name, title, bio, email, location, github_url, linkedin_url, resume_url,
			  profile_image_url, additional_info, updated_at
			  FROM profile ORDER BY updated_at IS NULL, updated_at DESC, id LIMIT 1`

	var p rows.Profile
	var title, bio, email, location, github, linkedin, resume, image, updated sql.NullString
	var info []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&p.ID, &p.FullName, &title, &bio, &email, &location,
		&github, &linkedin, &resume, &image, &info, &updated)
	if err == sql.ErrNoRows {
		return []rows.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	p.Title = title.String
	p.Bio = bio.String
	p.Email = nullString(email)
	p.Location = nullString(location)
	p.GithubURL = nullString(github)
	p.LinkedinURL = nullString(linkedin)
	p.ResumeURL = nullString(resume)
	p.ProfileImageURL = nullString(image)
	p.AdditionalInfo = info
	p.UpdatedAt = nullString(updated)
	return []rows.Profile{p}, nil
}

func (r *SQLiteRepository) SelectLatestStats(ctx context.Context) ([]rows.Stats, error) {
	var s rows.Stats
	var certs []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, certifications_and_badges, created_at FROM stats ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&s.ID, &certs, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return []rows.Stats{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.CertificationsAndBadges = certs
	return []rows.Stats{s}, nil
}

func (r *SQLiteRepository) InsertMessage(ctx context.Context, msg rows.Message) (rows.Message, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt)
	if err != nil {
		return rows.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return rows.Message{}, err
	}
	msg.ID = id
	return msg, nil
}

func (r *SQLiteRepository) RecordEvent(ctx context.Context, event *domain.StoredEvent) error {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = r.now()
	}
	query := `INSERT INTO events (id, kind, session_id, path, referrer, link_type, url, project_id, user_agent, received_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, event.ID, string(event.Kind), event.SessionID, event.Path,
		event.Referrer, string(event.LinkType), event.URL, event.ProjectID, event.UserAgent,
		event.ReceivedAt.UTC().Format(sqliteTime))
	return errors.Wrap(err, "insert event")
}

// GetAnalyticsSummary aggregates stored events. limit caps the top-paths
// list and the number of days returned.
func (r *SQLiteRepository) GetAnalyticsSummary(ctx context.Context, limit int) (*domain.AnalyticsSummary, error) {
	if limit < 1 {
		limit = 10
	}
	summary := &domain.AnalyticsSummary{
		TopPaths:     []domain.PathCount{},
		ClicksByType: make(map[domain.LinkType]int64),
		DailyViews:   []domain.DailyCount{},
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'pageview' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'click' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT session_id)
		FROM events`).Scan(&summary.PageViews, &summary.Clicks, &summary.UniqueSessions)
	if err != nil {
		return nil, err
	}

	rs, err := r.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS c FROM events
		WHERE kind = 'pageview'
		GROUP BY path ORDER BY c DESC, path LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for rs.Next() {
		var pc domain.PathCount
		if err := rs.Scan(&pc.Path, &pc.Count); err != nil {
			rs.Close()
			return nil, err
		}
		summary.TopPaths = append(summary.TopPaths, pc)
	}
	rs.Close()

	rs, err = r.db.QueryContext(ctx, `
		SELECT link_type, COUNT(*) FROM events
		WHERE kind = 'click'
		GROUP BY link_type`)
	if err != nil {
		return nil, err
	}
	for rs.Next() {
		var lt string
		var count int64
		if err := rs.Scan(&lt, &count); err != nil {
			rs.Close()
			return nil, err
		}
		if lt == "" {
			lt = "unknown"
		}
		summary.ClicksByType[domain.LinkType(lt)] = count
	}
	rs.Close()

	rs, err = r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', received_at) AS date, COUNT(*)
		FROM events
		WHERE kind = 'pageview'
		GROUP BY date
		ORDER BY date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	for rs.Next() {
		var dc domain.DailyCount
		if err := rs.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		summary.DailyViews = append(summary.DailyViews, dc)
	}
	return summary, rs.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Ensure interface compliance
var (
	_ ports.Backend    = (*SQLiteRepository)(nil)
	_ ports.EventStore = (*SQLiteRepository)(nil)
)
