package domain

import "time"

// Project is a published portfolio entry, flattened for display.
type Project struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Slug         string         `json:"slug"`
	Summary      string         `json:"summary"`
	Description  *string        `json:"description,omitempty"`
	ThumbnailURL *string        `json:"thumbnail_url,omitempty"`
	GithubURL    *string        `json:"github_url,omitempty"`
	LiveURL      *string        `json:"live_url,omitempty"`
	IsFeatured   bool           `json:"is_featured"`
	IsPublished  bool           `json:"is_published"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	Images       []ProjectImage `json:"images"`
	Skills       []Skill        `json:"skills"`
}

// ProjectImage belongs to exactly one project. SortOrder fixes display order.
type ProjectImage struct {
	ID        int64   `json:"id"`
	ImageURL  string  `json:"image_url"`
	Caption   *string `json:"caption,omitempty"`
	SortOrder int     `json:"sort_order"`
}

type Skill struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	IconURL          *string       `json:"icon_url,omitempty"`
	ProficiencyLevel int           `json:"proficiency_level"`
	Category         SkillCategory `json:"category"`
}

type SkillCategory struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IconURL     *string `json:"icon_url,omitempty"`
}
