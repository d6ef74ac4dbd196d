package api

import (
	"time"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/form"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/domain/schema"
	"github.com/artpar/formgate/ports"
)

type fieldJSON struct {
	ID              string    `json:"id"`
	Key             string    `json:"key"`
	Label           string    `json:"label"`
	Type            string    `json:"type"`
	WriteTo         string    `json:"write_to"`
	ValidationRegex string    `json:"validation_regex,omitempty"`
	MinLength       int       `json:"min_length,omitempty"`
	MaxLength       int       `json:"max_length,omitempty"`
	Options         []string  `json:"options,omitempty"`
	System          bool      `json:"system"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toFieldJSON(d field.Definition) fieldJSON {
	return fieldJSON{
		ID:              d.ID,
		Key:             d.Key,
		Label:           d.Label,
		Type:            string(d.Type),
		WriteTo:         string(d.WriteTo),
		ValidationRegex: d.ValidationRegex,
		MinLength:       d.MinLength,
		MaxLength:       d.MaxLength,
		Options:         d.Options,
		System:          d.System,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// placementJSON is the admin view: placement state merged with the
// shared definition, mirroring the joined listing.
type placementJSON struct {
	ID              string   `json:"id"`
	FieldID         string   `json:"field_id"`
	Key             string   `json:"key"`
	Label           string   `json:"label"`
	Type            string   `json:"type"`
	WriteTo         string   `json:"write_to"`
	OrderIndex      int      `json:"order_index"`
	Visible         bool     `json:"visible"`
	Required        bool     `json:"required"`
	HelpText        string   `json:"help_text,omitempty"`
	ValidationRegex string   `json:"validation_regex,omitempty"`
	MinLength       int      `json:"min_length,omitempty"`
	MaxLength       int      `json:"max_length,omitempty"`
	Options         []string `json:"options,omitempty"`
	System          bool     `json:"system"`
}

func toPlacementJSON(pf ports.PlacedField) placementJSON {
	return placementJSON{
		ID:              pf.Placement.ID,
		FieldID:         pf.Field.ID,
		Key:             pf.Field.Key,
		Label:           pf.Field.DisplayLabel(),
		Type:            string(pf.Field.Type),
		WriteTo:         string(pf.Field.WriteTo),
		OrderIndex:      pf.Placement.OrderIndex,
		Visible:         pf.Placement.Visible,
		Required:        pf.Placement.Required,
		HelpText:        pf.Placement.HelpText,
		ValidationRegex: pf.Field.ValidationRegex,
		MinLength:       pf.Field.MinLength,
		MaxLength:       pf.Field.MaxLength,
		Options:         pf.Field.Options,
		System:          pf.Field.System,
	}
}

// ruleJSON is the public view of a compiled rule: rendering and
// validation hints only, no internal ids.
type ruleJSON struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	HelpText   string   `json:"help_text,omitempty"`
	Options    []string `json:"options,omitempty"`
	MinLength  int      `json:"min_length,omitempty"`
	MaxLength  int      `json:"max_length,omitempty"`
	OrderIndex int      `json:"order_index"`
}

func toRuleJSON(r schema.Rule) ruleJSON {
	return ruleJSON{
		Key:        r.Key,
		Label:      r.Label,
		Type:       string(r.Type),
		Required:   r.Required,
		HelpText:   r.HelpText,
		Options:    r.Options,
		MinLength:  r.MinLength,
		MaxLength:  r.MaxLength,
		OrderIndex: r.OrderIndex,
	}
}

func toRulesJSON(rules []schema.Rule) []ruleJSON {
	out := make([]ruleJSON, len(rules))
	for i, r := range rules {
		out[i] = toRuleJSON(r)
	}
	return out
}

type formJSON struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toFormJSON(f form.Form) formJSON {
	return formJSON{
		ID:          f.ID,
		Slug:        f.Slug,
		Title:       f.Title,
		Description: f.Description,
		IsActive:    f.IsActive,
		IsPublished: f.IsPublished,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

type submissionJSON struct {
	ID        string         `json:"id"`
	FormID    string         `json:"form_id"`
	UserID    string         `json:"user_id,omitempty"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func toSubmissionJSON(s ports.Submission) submissionJSON {
	return submissionJSON{
		ID:        s.ID,
		FormID:    s.FormID,
		UserID:    s.UserID,
		Payload:   s.Payload,
		CreatedAt: s.CreatedAt,
	}
}

// fieldRequest carries shared definition attributes. All fields are
// optional; omitted ones are left unchanged.
type fieldRequest struct {
	Key             *string   `json:"key"`
	Label           *string   `json:"label"`
	Type            *string   `json:"type"`
	WriteTo         *string   `json:"write_to"`
	ValidationRegex *string   `json:"validation_regex"`
	MinLength       *int      `json:"min_length"`
	MaxLength       *int      `json:"max_length"`
	Options         *[]string `json:"options"`
}

func (req fieldRequest) toPatch() field.Patch {
	p := field.Patch{
		Label:           req.Label,
		ValidationRegex: req.ValidationRegex,
		MinLength:       req.MinLength,
		MaxLength:       req.MaxLength,
		Options:         req.Options,
	}
	if req.Type != nil {
		t := field.Type(*req.Type)
		p.Type = &t
	}
	if req.WriteTo != nil {
		w := field.WriteTo(*req.WriteTo)
		p.WriteTo = &w
	}
	return p
}

// overridesRequest carries per-container placement settings.
type overridesRequest struct {
	Required   *bool   `json:"required"`
	Visible    *bool   `json:"visible"`
	HelpText   *string `json:"help_text"`
	OrderIndex *int    `json:"order_index"`
}

func (req overridesRequest) toOverrides() placement.Overrides {
	return placement.Overrides{
		Required:   req.Required,
		Visible:    req.Visible,
		HelpText:   req.HelpText,
		OrderIndex: req.OrderIndex,
	}
}
