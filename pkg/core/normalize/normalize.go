// Package normalize turns backend rows into the flat records the site
// renders. Every function is pure. A row that does not match the expected
// shape yields a *ShapeError instead of a partially filled record.
package normalize

import (
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/core/rows"
)

const (
	minProficiency = 0
	maxProficiency = 5
)

// ShapeError means the backend returned something its contract does not
// allow, e.g. an association row without its skill.
type ShapeError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s %d: %s", e.Entity, e.ID, e.Reason)
}

// Project flattens a joined project row. Images come out ordered by
// SortOrder (stable on ties); skills keep backend order.
func Project(raw rows.Project) (domain.Project, error) {
	if raw.Slug == "" {
		return domain.Project{}, &ShapeError{Entity: "project", ID: raw.ID, Reason: "empty slug"}
	}

	start, err := parseDate(raw.StartDate)
	if err != nil {
		return domain.Project{}, &ShapeError{Entity: "project", ID: raw.ID, Reason: "start_date: " + err.Error()}
	}
	end, err := parseDate(raw.EndDate)
	if err != nil {
		return domain.Project{}, &ShapeError{Entity: "project", ID: raw.ID, Reason: "end_date: " + err.Error()}
	}

	skills, err := projectSkills(raw)
	if err != nil {
		return domain.Project{}, err
	}

	return domain.Project{
		ID:           raw.ID,
		Title:        raw.Title,
		Slug:         raw.Slug,
		Summary:      raw.Summary,
		Description:  raw.Description,
		ThumbnailURL: nonEmpty(raw.ThumbnailURL),
		GithubURL:    nonEmpty(raw.GithubURL),
		LiveURL:      nonEmpty(raw.LiveURL),
		IsFeatured:   raw.IsFeatured,
		IsPublished:  raw.IsPublished,
		StartDate:    start,
		EndDate:      end,
		Images:       projectImages(raw.ProjectImages),
		Skills:       skills,
	}, nil
}

func Projects(raw []rows.Project) ([]domain.Project, error) {
	projects := make([]domain.Project, 0, len(raw))
	for _, r := range raw {
		p, err := Project(r)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func projectImages(raw []rows.ProjectImage) []domain.ProjectImage {
	images := make([]domain.ProjectImage, 0, len(raw))
	for _, img := range raw {
		images = append(images, domain.ProjectImage{
			ID:        img.ID,
			ImageURL:  img.ImageURL,
			Caption:   img.Caption,
			SortOrder: img.SortOrder,
		})
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].SortOrder < images[j].SortOrder
	})
	return images
}

func projectSkills(raw rows.Project) ([]domain.Skill, error) {
	skills := make([]domain.Skill, 0, len(raw.ProjectSkills)+len(raw.Skills))
	for _, ps := range raw.ProjectSkills {
		if ps.Skills == nil {
			return nil, &ShapeError{Entity: "project", ID: raw.ID, Reason: "project_skills entry without skill"}
		}
		s, err := joinedSkill(*ps.Skills)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	for _, rs := range raw.Skills {
		s, err := joinedSkill(rs)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, nil
}

// joinedSkill maps a skill that carries its category inline, either as
// tech_categories (table join) or category (procedure output).
func joinedSkill(raw rows.Skill) (domain.Skill, error) {
	cat := raw.TechCategories
	if cat == nil {
		cat = raw.Category
	}
	if cat == nil {
		return domain.Skill{}, &ShapeError{Entity: "skill", ID: raw.ID, Reason: "missing category"}
	}
	level, err := proficiency(raw)
	if err != nil {
		return domain.Skill{}, err
	}
	return domain.Skill{
		ID:               raw.ID,
		Name:             raw.Name,
		IconURL:          nonEmpty(raw.IconURL),
		ProficiencyLevel: level,
		Category: domain.SkillCategory{
			ID:   cat.ID,
			Name: cat.Name,
		},
	}, nil
}

// SkillsByCategory undoes the backend's grouping: one flat skill per entry,
// each carrying a copy of its category.
func SkillsByCategory(groups []rows.SkillCategoryGroup) ([]domain.Skill, error) {
	var skills []domain.Skill
	for _, g := range groups {
		category := domain.SkillCategory{
			ID:          g.CategoryID,
			Name:        g.CategoryName,
			Description: g.CategoryDescription,
			IconURL:     nonEmpty(g.CategoryIconURL),
		}
		for _, rs := range g.Skills {
			level, err := proficiency(rs)
			if err != nil {
				return nil, err
			}
			skills = append(skills, domain.Skill{
				ID:               rs.ID,
				Name:             rs.Name,
				IconURL:          nonEmpty(rs.IconURL),
				ProficiencyLevel: level,
				Category:         category,
			})
		}
	}
	if skills == nil {
		skills = []domain.Skill{}
	}
	return skills, nil
}

func Category(raw rows.Category) domain.SkillCategory {
	return domain.SkillCategory{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		IconURL:     nonEmpty(raw.IconURL),
	}
}

func Categories(raw []rows.Category) []domain.SkillCategory {
	out := make([]domain.SkillCategory, 0, len(raw))
	for _, c := range raw {
		out = append(out, Category(c))
	}
	return out
}

func Profile(raw rows.Profile) (domain.Profile, error) {
	updated, err := parseTimestamp(raw.UpdatedAt)
	if err != nil {
		return domain.Profile{}, &ShapeError{Entity: "profile", ID: raw.ID, Reason: "updated_at: " + err.Error()}
	}
	var info map[string]any
	if len(raw.AdditionalInfo) > 0 && string(raw.AdditionalInfo) != "null" {
		if err := json.Unmarshal(raw.AdditionalInfo, &info); err != nil {
			return domain.Profile{}, &ShapeError{Entity: "profile", ID: raw.ID, Reason: "additional_info is not an object"}
		}
	}
	return domain.Profile{
		ID:              raw.ID,
		FullName:        raw.FullName,
		Title:           raw.Title,
		Bio:             raw.Bio,
		Email:           nonEmpty(raw.Email),
		Location:        nonEmpty(raw.Location),
		GithubURL:       nonEmpty(raw.GithubURL),
		LinkedinURL:     nonEmpty(raw.LinkedinURL),
		ResumeURL:       nonEmpty(raw.ResumeURL),
		ProfileImageURL: nonEmpty(raw.ProfileImageURL),
		AdditionalInfo:  info,
		UpdatedAt:       updated,
	}, nil
}

func Stats(raw rows.Stats) (domain.Stats, error) {
	created, err := parseTimestamp(&raw.CreatedAt)
	if err != nil || created == nil {
		return domain.Stats{}, &ShapeError{Entity: "stats", ID: raw.ID, Reason: "bad created_at"}
	}
	certs := []domain.Certification{}
	if len(raw.CertificationsAndBadges) > 0 && string(raw.CertificationsAndBadges) != "null" {
		var rc []rows.Certification
		if err := json.Unmarshal(raw.CertificationsAndBadges, &rc); err != nil {
			return domain.Stats{}, &ShapeError{Entity: "stats", ID: raw.ID, Reason: "certifications_and_badges is not a list"}
		}
		for _, c := range rc {
			certs = append(certs, domain.Certification(c))
		}
	}
	return domain.Stats{
		ID:                      raw.ID,
		CertificationsAndBadges: certs,
		CreatedAt:               *created,
	}, nil
}

func ContactMessage(raw rows.Message) (domain.ContactMessage, error) {
	created, err := parseTimestamp(&raw.CreatedAt)
	if err != nil || created == nil {
		return domain.ContactMessage{}, &ShapeError{Entity: "message", ID: raw.ID, Reason: "bad created_at"}
	}
	return domain.ContactMessage{
		ID:        raw.ID,
		Name:      raw.Name,
		Email:     raw.Email,
		Subject:   raw.Subject,
		Message:   raw.Message,
		CreatedAt: *created,
	}, nil
}

// MessageRow is the insert shape for a contact submission.
func MessageRow(m domain.ContactMessage) rows.Message {
	return rows.Message{
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func proficiency(raw rows.Skill) (int, error) {
	if raw.ProficiencyLevel == nil {
		return 0, nil
	}
	level := *raw.ProficiencyLevel
	if level < minProficiency || level > maxProficiency {
		return 0, &ShapeError{Entity: "skill", ID: raw.ID, Reason: fmt.Sprintf("proficiency_level %d out of range", level)}
	}
	return level, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, *s); err == nil {
		return &t, nil
	}
	return parseTimestamp(s)
}

func parseTimestamp(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time %q", *s)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
