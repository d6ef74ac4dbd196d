// Package schema compiles a container's placements and field
// definitions into a runtime ruleset, and validates and partitions
// submitted payloads against it.
package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/placement"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule is one compiled field: the definition's shared attributes merged
// with the per-container placement state.
type Rule struct {
	PlacementID     string
	FieldID         string
	Key             string
	Label           string
	Type            field.Type
	WriteTo         field.WriteTo
	Required        bool
	Visible         bool
	HelpText        string
	Options         []string
	MinLength       int
	MaxLength       int
	ValidationRegex string
	OrderIndex      int
	System          bool

	pattern *regexp.Regexp // nil when unset or malformed
}

// Ruleset is the ordered rule list for one container.
type Ruleset struct {
	Rules []Rule
}

// Compile merges placements with their definitions, in placement order.
// Placements whose definition is missing are skipped: a sync racing a
// field deletion can leave a dangling reference, which reads tolerate.
// The returned warnings name fields whose stored validation_regex does
// not compile; such patterns are treated as no constraint.
func Compile(ps []placement.Placement, defs map[string]field.Definition) (Ruleset, []string) {
	var warnings []string
	rules := make([]Rule, 0, len(ps))
	for _, p := range ps {
		d, ok := defs[p.FieldID]
		if !ok {
			continue
		}
		r := Rule{
			PlacementID:     p.ID,
			FieldID:         d.ID,
			Key:             d.Key,
			Label:           d.DisplayLabel(),
			Type:            d.Type,
			WriteTo:         d.WriteTo,
			Required:        p.Required,
			Visible:         p.Visible,
			HelpText:        p.HelpText,
			MinLength:       d.MinLength,
			MaxLength:       d.MaxLength,
			ValidationRegex: d.ValidationRegex,
			OrderIndex:      p.OrderIndex,
			System:          d.System,
		}
		if d.Type == field.TypeSelect {
			r.Options = append([]string(nil), d.Options...)
		}
		if d.ValidationRegex != "" {
			re, err := regexp.Compile(d.ValidationRegex)
			if err != nil {
				warnings = append(warnings, d.Key)
			} else {
				r.pattern = re
			}
		}
		rules = append(rules, r)
	}
	return Ruleset{Rules: rules}, warnings
}

// Visible returns the rules rendered to the public, in order. Invisible
// placements never appear here, whatever their other flags.
func (rs Ruleset) Visible() []Rule {
	out := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

// Keys returns every rule key, in order.
func (rs Ruleset) Keys() []string {
	out := make([]string, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		out = append(out, r.Key)
	}
	return out
}

// Payload is a submitted value map, keyed by field key.
type Payload map[string]any

// Result is the outcome of validating a payload.
type Result struct {
	OK     bool
	Issues []string
}

// Validate checks every rule against the payload, visible or not: an
// invisible placement is a data-entry point that simply isn't rendered.
// All issues are collected so the caller can show them together.
func (rs Ruleset) Validate(p Payload) Result {
	var issues []string

	for _, r := range rs.Rules {
		val, present := p[r.Key]

		if r.Required && isEmpty(val, present) {
			issues = append(issues, r.Label+" is required")
			continue
		}
		if !present || val == nil {
			continue
		}

		switch r.Type {
		case field.TypeEmail:
			s, ok := val.(string)
			if !ok || !emailPattern.MatchString(s) {
				issues = append(issues, r.Label+" must be a valid email")
			}
		case field.TypeNumber:
			if !isNumber(val) {
				issues = append(issues, r.Label+" must be a number")
			}
		case field.TypeSelect:
			if !contains(r.Options, stringify(val)) {
				issues = append(issues, r.Label+" must be one of: "+joinOptions(r.Options))
			}
		case field.TypeCheckbox:
			if _, ok := val.(bool); !ok {
				issues = append(issues, r.Label+" must be true/false")
			}
		default:
			if !isStringOrNumber(val) {
				issues = append(issues, r.Label+" has invalid type")
			}
		}

		if s, ok := val.(string); ok {
			if r.MinLength > 0 && len(s) < r.MinLength {
				issues = append(issues, fmt.Sprintf("%s must be at least %d characters", r.Label, r.MinLength))
			}
			if r.MaxLength > 0 && len(s) > r.MaxLength {
				issues = append(issues, fmt.Sprintf("%s must be at most %d characters", r.Label, r.MaxLength))
			}
		}

		if r.pattern != nil && !r.pattern.MatchString(stringify(val)) {
			issues = append(issues, r.Label+" is invalid")
		}
	}

	return Result{OK: len(issues) == 0, Issues: issues}
}

// Partition splits payload values into core and attribute maps by each
// rule's write target. Keys not covered by any rule are dropped.
func (rs Ruleset) Partition(p Payload) (core, attributes map[string]any) {
	core = make(map[string]any)
	attributes = make(map[string]any)
	for _, r := range rs.Rules {
		v, ok := p[r.Key]
		if !ok {
			continue
		}
		if r.WriteTo == field.WriteCore {
			core[r.Key] = v
		} else {
			attributes[r.Key] = v
		}
	}
	return core, attributes
}

func isEmpty(val any, present bool) bool {
	if !present || val == nil {
		return true
	}
	s, ok := val.(string)
	return ok && s == ""
}

func isNumber(val any) bool {
	switch v := val.(type) {
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		f := float64(v)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case int, int32, int64:
		return true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && !math.IsInf(f, 0)
	}
	return false
}

func isStringOrNumber(val any) bool {
	switch val.(type) {
	case string:
		return true
	}
	return isNumber(val)
}

func stringify(val any) string {
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

func joinOptions(opts []string) string {
	out := ""
	for i, o := range opts {
		if i > 0 {
			out += ", "
		}
		out += o
	}
	return out
}
