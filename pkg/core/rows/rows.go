// Package rows holds the backend's record shapes as they come off the wire
// (snake_case JSON, nested relations) before normalization.
package rows

import "encoding/json"

// Project is a projects row, optionally joined with project_images and
// project_skills -> skills -> tech_categories. Some procedures return the
// skills already flattened; those land in Skills.
type Project struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Summary       string         `json:"summary"`
	Description   *string        `json:"description"`
	ThumbnailURL  *string        `json:"thumbnail_url"`
	GithubURL     *string        `json:"github_url"`
	LiveURL       *string        `json:"live_url"`
	IsFeatured    bool           `json:"is_featured"`
	IsPublished   bool           `json:"is_published"`
	StartDate     *string        `json:"start_date"`
	EndDate       *string        `json:"end_date"`
	ProjectImages []ProjectImage `json:"project_images"`
	ProjectSkills []ProjectSkill `json:"project_skills"`
	Skills        []Skill        `json:"skills"`
}

type ProjectImage struct {
	ID        int64   `json:"id"`
	ImageURL  string  `json:"image_url"`
	Caption   *string `json:"caption"`
	SortOrder int     `json:"sort_order"`
}

// ProjectSkill is the association row; only its embedded skill is used.
type ProjectSkill struct {
	Skills *Skill `json:"skills"`
}

type Skill struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	IconURL          *string   `json:"icon_url"`
	ProficiencyLevel *int      `json:"proficiency_level"`
	CategoryID       *int64    `json:"category_id"`
	TechCategories   *Category `json:"tech_categories"`
	Category         *Category `json:"category"`
}

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IconURL     *string `json:"icon_url"`
}

// SkillCategoryGroup is one row of get_skills_by_category().
type SkillCategoryGroup struct {
	CategoryID          int64   `json:"category_id"`
	CategoryName        string  `json:"category_name"`
	CategoryDescription *string `json:"category_description"`
	CategoryIconURL     *string `json:"category_icon_url"`
	Skills              []Skill `json:"skills"`
}

type Profile struct {
	ID              int64           `json:"id"`
	FullName        string          `json:"full_name"`
	Title           string          `json:"title"`
	Bio             string          `json:"bio"`
	Email           *string         `json:"email"`
	Location        *string         `json:"location"`
	GithubURL       *string         `json:"github_url"`
	LinkedinURL     *string         `json:"linkedin_url"`
	ResumeURL       *string         `json:"resume_url"`
	ProfileImageURL *string         `json:"profile_image_url"`
	AdditionalInfo  json.RawMessage `json:"additional_info"`
	UpdatedAt       *string         `json:"updated_at"`
}

type Stats struct {
	ID                      int64           `json:"id"`
	CertificationsAndBadges json.RawMessage `json:"certifications_and_badges"`
	CreatedAt               string          `json:"created_at"`
}

type Certification struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	IssuedOn    string `json:"issued_on"`
	Description string `json:"description"`
}

type Message struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
