package template

import (
	"time"

	"github.com/dmitrymomot/notifykit"
)

// Template is a reusable, versioned message skeleton with named variable
// placeholders. Once a template version has been referenced by a sent message
// it is never mutated; edits create a new version.
type Template struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      notifykit.Channel  `json:"type"`
	Category  notifykit.Category `json:"category"`
	Subject   string             `json:"subject,omitempty"`
	Body      string             `json:"body"`
	Variables []string           `json:"variables,omitempty"`
	Active    bool               `json:"active"`
	Language  string             `json:"language"`
	Version   int                `json:"version"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CreateParams holds the caller-supplied fields for a new template.
type CreateParams struct {
	Name      string
	Type      notifykit.Channel
	Category  notifykit.Category
	Subject   string
	Body      string
	Variables []string
	Language  string
}

// UpdateParams holds the fields that may change between template versions.
// Nil pointers leave the previous version's value in place.
type UpdateParams struct {
	Subject   *string
	Body      *string
	Variables []string
	Active    *bool
}

// ListOptions filters template listings.
type ListOptions struct {
	Type       notifykit.Channel
	Category   notifykit.Category
	OnlyActive bool
}
