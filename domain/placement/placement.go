// Package placement provides value types for the field/container join.
// A Placement carries only per-container state (order, visibility,
// required flag, help text); the field's shared attributes stay on its
// Definition. At most one placement exists per (field, container) pair.
package placement

import (
	"github.com/artpar/formgate/pkg/faults"
)

// Scope is a built-in container: the three fixed surfaces whose fields
// operators manage without creating a custom form.
type Scope string

// Built-in scopes.
const (
	ScopeRegistration Scope = "registration"
	ScopeLogin        Scope = "login"
	ScopeProfile      Scope = "profile"
)

// Scopes lists the built-in scopes in a stable order.
func Scopes() []Scope {
	return []Scope{ScopeRegistration, ScopeLogin, ScopeProfile}
}

// Valid reports whether s is a built-in scope.
func (s Scope) Valid() bool {
	return s == ScopeRegistration || s == ScopeLogin || s == ScopeProfile
}

// Container identifies the unit of ordering and visibility: either a
// built-in scope or a custom form. Exactly one of the two is set.
// Containers are comparable and usable as map keys.
type Container struct {
	Scope  Scope
	FormID string
}

// ForScope builds a built-in scope container.
func ForScope(s Scope) Container {
	return Container{Scope: s}
}

// ForForm builds a custom form container.
func ForForm(formID string) Container {
	return Container{FormID: formID}
}

// IsForm reports whether the container is a custom form.
func (c Container) IsForm() bool {
	return c.FormID != ""
}

// Validate checks that exactly one side of the container is set and
// that a scope, when set, is one of the built-ins.
func (c Container) Validate() error {
	switch {
	case c.Scope != "" && c.FormID != "":
		return faults.Validation("container cannot be both a scope and a form")
	case c.Scope == "" && c.FormID == "":
		return faults.Validation("container is required")
	case c.Scope != "" && !c.Scope.Valid():
		return faults.Validation("scope must be one of registration, login, profile")
	}
	return nil
}

// String renders the container for logs.
func (c Container) String() string {
	if c.IsForm() {
		return "form:" + c.FormID
	}
	return "scope:" + string(c.Scope)
}

// Placement binds a field definition into one container.
type Placement struct {
	ID         string
	FieldID    string
	Container  Container
	OrderIndex int
	Visible    bool
	Required   bool
	HelpText   string
}

// Overrides are optional per-container settings supplied when creating
// or updating a placement. Nil pointers fall back to the current value,
// or to the defaults (visible, not required) on create.
type Overrides struct {
	Required   *bool
	Visible    *bool
	HelpText   *string
	OrderIndex *int
}

// Apply copies every supplied override onto p.
func (o Overrides) Apply(p *Placement) {
	if o.Required != nil {
		p.Required = *o.Required
	}
	if o.Visible != nil {
		p.Visible = *o.Visible
	}
	if o.HelpText != nil {
		p.HelpText = *o.HelpText
	}
	if o.OrderIndex != nil {
		p.OrderIndex = *o.OrderIndex
	}
}

// New builds a placement with the defaults, then applies overrides.
func New(id, fieldID string, c Container, orderIndex int, o Overrides) Placement {
	p := Placement{
		ID:         id,
		FieldID:    fieldID,
		Container:  c,
		OrderIndex: orderIndex,
		Visible:    true,
		Required:   false,
	}
	o.Apply(&p)
	return p
}

// Diff computes the containers to add and remove to turn existing into
// desired. Both results preserve input order; duplicates are ignored.
func Diff(existing, desired []Container) (toAdd, toRemove []Container) {
	have := make(map[Container]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	want := make(map[Container]bool, len(desired))
	for _, c := range desired {
		if want[c] {
			continue
		}
		want[c] = true
		if !have[c] {
			toAdd = append(toAdd, c)
		}
	}
	seen := make(map[Container]bool, len(existing))
	for _, c := range existing {
		if seen[c] {
			continue
		}
		seen[c] = true
		if !want[c] {
			toRemove = append(toRemove, c)
		}
	}
	return toAdd, toRemove
}
