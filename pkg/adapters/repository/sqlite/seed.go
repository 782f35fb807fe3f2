package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/giftportfolio/portfolio/pkg/core/rows"
)

// Seed is the portable form of the local content, used by the CLI's
// import and export commands.
type Seed struct {
	Categories []rows.Category `json:"tech_categories"`
	Skills     []rows.Skill    `json:"skills"`
	Projects   []SeedProject   `json:"projects"`
	Profiles   []rows.Profile  `json:"profile"`
	Stats      []rows.Stats    `json:"stats"`
	Admins     []string        `json:"admins,omitempty"`
}

// SeedProject is a project row plus the ids of the skills it uses.
type SeedProject struct {
	rows.Project
	SkillIDs []int64 `json:"skill_ids"`
}

// Import writes seed inside one transaction. Rows keep their ids so the
// skill references stay valid; existing rows with the same id are replaced.
func (r *SQLiteRepository) Import(ctx context.Context, seed Seed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range seed.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO tech_categories (id, name, description, icon_url) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Description, c.IconURL); err != nil {
			return err
		}
	}

	for _, s := range seed.Skills {
		level := 0
		if s.ProficiencyLevel != nil {
			level = *s.ProficiencyLevel
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO skills (id, name, icon_url, proficiency_level, category_id) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.IconURL, level, s.CategoryID); err != nil {
			return err
		}
	}

	for _, p := range seed.Projects {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Title, p.Slug, p.Summary, p.Description, p.ThumbnailURL, p.GithubURL, p.LiveURL,
			p.IsFeatured, p.IsPublished, p.StartDate, p.EndDate); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_images WHERE project_id = ?`, p.ID); err != nil {
			return err
		}
		for _, img := range p.ProjectImages {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO project_images (project_id, image_url, caption, sort_order) VALUES (?, ?, ?, ?)`,
				p.ID, img.ImageURL, img.Caption, img.SortOrder); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_skills WHERE project_id = ?`, p.ID); err != nil {
			return err
		}
		for _, skillID := range p.SkillIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO project_skills (project_id, skill_id) VALUES (?, ?)`, p.ID, skillID); err != nil {
				return err
			}
		}
	}

	for _, p := range seed.Profiles {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO profile
			(id, full_name, title, bio, email, location, github_url, linkedin_url, resume_url, profile_image_url, additional_info, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.FullName, p.Title, p.Bio, p.Email, p.Location, p.GithubURL, p.LinkedinURL, p.ResumeURL,
			p.ProfileImageURL, rawJSON(p.AdditionalInfo), p.UpdatedAt); err != nil {
			return err
		}
	}

	for _, s := range seed.Stats {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO stats (id, certifications_and_badges, created_at) VALUES (?, ?, ?)`,
			s.ID, rawJSON(s.CertificationsAndBadges), s.CreatedAt); err != nil {
			return err
		}
	}

	for _, subject := range seed.Admins {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO admins (subject) VALUES (?)`, subject); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Export dumps all content, unpublished projects included.
func (r *SQLiteRepository) Export(ctx context.Context) (*Seed, error) {
	seed := &Seed{}

	var err error
	if seed.Categories, err = r.SelectCategories(ctx); err != nil {
		return nil, err
	}
	if seed.Skills, err = r.allSkills(ctx); err != nil {
		return nil, err
	}

	projects, err := r.GetAllProjectsWithSkills(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		sp := SeedProject{Project: p, SkillIDs: []int64{}}
		for _, ps := range p.ProjectSkills {
			if ps.Skills != nil {
				sp.SkillIDs = append(sp.SkillIDs, ps.Skills.ID)
			}
		}
		sp.ProjectSkills = nil
		seed.Projects = append(seed.Projects, sp)
	}

	if seed.Profiles, err = r.SelectLatestProfile(ctx); err != nil {
		return nil, err
	}
	if seed.Stats, err = r.SelectLatestStats(ctx); err != nil {
		return nil, err
	}
	if seed.Admins, err = r.admins(ctx); err != nil {
		return nil, err
	}
	return seed, nil
}

func (r *SQLiteRepository) allSkills(ctx context.Context) ([]rows.Skill, error) {
	rs, err := r.db.QueryContext(ctx, `SELECT id, name, icon_url, proficiency_level, category_id FROM skills ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	skills := []rows.Skill{}
	for rs.Next() {
		var s rows.Skill
		var icon sql.NullString
		var level int
		var categoryID int64
		if err := rs.Scan(&s.ID, &s.Name, &icon, &level, &categoryID); err != nil {
			return nil, err
		}
		s.IconURL = nullString(icon)
		s.ProficiencyLevel = &level
		s.CategoryID = &categoryID
		skills = append(skills, s)
	}
	return skills, rs.Err()
}

func (r *SQLiteRepository) admins(ctx context.Context) ([]string, error) {
	rs, err := r.db.QueryContext(ctx, `SELECT subject FROM admins ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []string
	for rs.Next() {
		var s string
		if err := rs.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rs.Err()
}

// rawJSON stores JSON columns as text, NULL when absent.
func rawJSON(m json.RawMessage) any {
	if len(m) == 0 || string(m) == "null" {
		return nil
	}
	return string(m)
}
