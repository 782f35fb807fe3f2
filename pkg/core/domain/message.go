package domain

import "time"

// ContactMessage is a contact form submission. It is written once and never
// read back by the site.
type ContactMessage struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
