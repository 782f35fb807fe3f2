package domain

import "time"

// Profile is the site owner's about-page record.
type Profile struct {
	ID              int64          `json:"id"`
	FullName        string         `json:"full_name"`
	Title           string         `json:"title"`
	Bio             string         `json:"bio"`
	Email           *string        `json:"email,omitempty"`
	Location        *string        `json:"location,omitempty"`
	GithubURL       *string        `json:"github_url,omitempty"`
	LinkedinURL     *string        `json:"linkedin_url,omitempty"`
	ResumeURL       *string        `json:"resume_url,omitempty"`
	ProfileImageURL *string        `json:"profile_image_url,omitempty"`
	AdditionalInfo  map[string]any `json:"additional_info,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

type Stats struct {
	ID                      int64           `json:"id"`
	CertificationsAndBadges []Certification `json:"certifications_and_badges"`
	CreatedAt               time.Time       `json:"created_at"`
}

type Certification struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	IssuedOn    string `json:"issued_on"`
	Description string `json:"description"`
}
