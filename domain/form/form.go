// Package form provides value types for slug-addressed custom forms.
// A form owns its own placements and never shares the built-in scope
// namespace.
package form

import (
	"strings"
	"time"

	"github.com/artpar/formgate/pkg/faults"
)

// Form is a custom, slug-addressed container.
type Form struct {
	ID          string
	Slug        string
	Title       string
	Description string
	IsActive    bool // inactive forms reject public submissions
	IsPublished bool // gates public visibility of the definition itself
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeSlug lower-cases a slug and replaces runs of characters
// outside [a-z0-9-] with a single hyphen.
func NormalizeSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !ok {
			r = '-'
		}
		if r == '-' {
			if lastHyphen {
				continue
			}
			lastHyphen = true
		} else {
			lastHyphen = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "-")
}

// New validates the inputs and builds a Form. Slug and title are
// required; forms start active and unpublished unless stated otherwise.
func New(id, slug, title, description string, active, published bool, now time.Time) (Form, error) {
	var issues []string

	slug = NormalizeSlug(slug)
	if slug == "" {
		issues = append(issues, "slug is required")
	}
	if strings.TrimSpace(title) == "" {
		issues = append(issues, "title is required")
	}
	if len(issues) > 0 {
		return Form{}, faults.Validation(issues...)
	}

	return Form{
		ID:          id,
		Slug:        slug,
		Title:       strings.TrimSpace(title),
		Description: description,
		IsActive:    active,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Patch is a partial update to a Form.
type Patch struct {
	Slug        *string
	Title       *string
	Description *string
	IsActive    *bool
	IsPublished *bool
}

// Validate checks the supplied attributes, batching all issues.
func (p Patch) Validate() error {
	var issues []string
	if p.Slug != nil && NormalizeSlug(*p.Slug) == "" {
		issues = append(issues, "slug cannot be empty")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		issues = append(issues, "title cannot be empty")
	}
	if len(issues) > 0 {
		return faults.Validation(issues...)
	}
	return nil
}

// Apply copies every supplied attribute onto f.
func (p Patch) Apply(f *Form) {
	if p.Slug != nil {
		f.Slug = NormalizeSlug(*p.Slug)
	}
	if p.Title != nil {
		f.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	if p.IsPublished != nil {
		f.IsPublished = *p.IsPublished
	}
}
