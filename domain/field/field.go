// Package field provides value types for the field catalog.
// A Definition describes a reusable form field: its key, input type,
// validation constraints, and which storage destination a validated
// value is written to. Where a field appears is placement state and
// lives in domain/placement.
package field

import (
	"strings"
	"time"

	"github.com/artpar/formgate/pkg/faults"
)

// Type is the input type of a field.
type Type string

// Supported field types.
const (
	TypeText     Type = "text"
	TypePassword Type = "password"
	TypeEmail    Type = "email"
	TypeNumber   Type = "number"
	TypeDate     Type = "date"
	TypeTextarea Type = "textarea"
	TypeCheckbox Type = "checkbox"
	TypeSelect   Type = "select"
)

// Types lists all supported field types in a stable order.
func Types() []Type {
	return []Type{
		TypeText, TypePassword, TypeEmail, TypeNumber,
		TypeDate, TypeTextarea, TypeCheckbox, TypeSelect,
	}
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// IsString reports whether values of this type are free-form strings,
// making min/max length bounds meaningful.
func (t Type) IsString() bool {
	switch t {
	case TypeText, TypePassword, TypeEmail, TypeTextarea, TypeDate:
		return true
	}
	return false
}

// WriteTo selects the storage destination for a validated value.
type WriteTo string

// Write destinations: fixed profile columns vs the free-form bag.
const (
	WriteCore       WriteTo = "core"
	WriteAttributes WriteTo = "attributes"
)

// Valid reports whether w is a supported destination.
func (w WriteTo) Valid() bool {
	return w == WriteCore || w == WriteAttributes
}

// Definition is a reusable field definition. One definition may be
// placed into any number of containers; edits here affect every
// placement of the key.
type Definition struct {
	ID              string
	Key             string
	Label           string
	Type            Type
	WriteTo         WriteTo
	ValidationRegex string
	MinLength       int // 0 means unset
	MaxLength       int // 0 means unset
	Options         []string
	System          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DisplayLabel returns the label, falling back to the key.
func (d Definition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Key
}

// NormalizeKey canonicalizes a field key: lower-case, any character
// outside [a-z0-9_] becomes "_", runs of "_" collapse, leading and
// trailing "_" are trimmed. The result may be empty.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
		if !ok {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

// DeriveKey normalizes key, falling back to label when key is empty.
// Fails with a ValidationError when neither yields a usable key.
func DeriveKey(key, label string) (string, error) {
	k := NormalizeKey(key)
	if k == "" {
		k = NormalizeKey(label)
	}
	if k == "" {
		return "", faults.Validation("key is required")
	}
	return k, nil
}

// Patch is a partial update to a Definition. Nil pointers mean "leave
// unchanged"; a caller can never blank an attribute by omission.
type Patch struct {
	Label           *string
	Type            *Type
	WriteTo         *WriteTo
	ValidationRegex *string
	MinLength       *int
	MaxLength       *int
	Options         *[]string
}

// Validate checks every supplied attribute and reports all violations
// in one batch.
func (p Patch) Validate() error {
	var issues []string

	if p.Type != nil && !p.Type.Valid() {
		issues = append(issues, "type must be one of "+joinTypes())
	}
	if p.WriteTo != nil && !p.WriteTo.Valid() {
		issues = append(issues, "write_to must be one of core, attributes")
	}
	if p.MinLength != nil && *p.MinLength < 0 {
		issues = append(issues, "min_length must not be negative")
	}
	if p.MaxLength != nil && *p.MaxLength < 0 {
		issues = append(issues, "max_length must not be negative")
	}
	if p.MinLength != nil && p.MaxLength != nil &&
		*p.MaxLength > 0 && *p.MinLength > *p.MaxLength {
		issues = append(issues, "min_length cannot exceed max_length")
	}
	if p.Type != nil && *p.Type == TypeSelect &&
		p.Options != nil && len(*p.Options) == 0 {
		issues = append(issues, "options are required when type is select")
	}

	if len(issues) > 0 {
		return faults.Validation(issues...)
	}
	return nil
}

// Apply copies every supplied attribute onto d.
func (p Patch) Apply(d *Definition) {
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.WriteTo != nil {
		d.WriteTo = *p.WriteTo
	}
	if p.ValidationRegex != nil {
		d.ValidationRegex = *p.ValidationRegex
	}
	if p.MinLength != nil {
		d.MinLength = *p.MinLength
	}
	if p.MaxLength != nil {
		d.MaxLength = *p.MaxLength
	}
	if p.Options != nil {
		d.Options = append([]string(nil), (*p.Options)...)
	}
}

// Empty reports whether the patch carries no changes.
func (p Patch) Empty() bool {
	return p.Label == nil && p.Type == nil && p.WriteTo == nil &&
		p.ValidationRegex == nil && p.MinLength == nil &&
		p.MaxLength == nil && p.Options == nil
}

// New builds a Definition for a never-seen key, applying base on top of
// defaults (label = key, type = text, write_to = attributes).
func New(id, key string, base Patch, now time.Time) (Definition, error) {
	if err := base.Validate(); err != nil {
		return Definition{}, err
	}
	d := Definition{
		ID:        id,
		Key:       key,
		Label:     key,
		Type:      TypeText,
		WriteTo:   WriteAttributes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	base.Apply(&d)
	if d.Label == "" {
		d.Label = key
	}
	if d.Type == TypeSelect && len(d.Options) == 0 {
		return Definition{}, faults.Validation("options are required when type is select")
	}
	return d, nil
}

func joinTypes() string {
	names := make([]string, 0, len(Types()))
	for _, t := range Types() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
