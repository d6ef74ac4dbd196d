package app

import (
	"context"

	"github.com/artpar/formgate/adapters/metrics"
	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/domain/profile"
	"github.com/artpar/formgate/domain/schema"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
	"github.com/rs/zerolog"
)

// ValidatorService compiles container rulesets and runs payloads
// through them. Scope submissions land on the profile writer; form
// submissions are handled by FormService.
type ValidatorService struct {
	placements ports.PlacementStore
	profiles   ports.ProfileStore
	logger     zerolog.Logger
	collector  *metrics.Collector // optional
}

// NewValidatorService creates a new validator service.
func NewValidatorService(placements ports.PlacementStore, profiles ports.ProfileStore, logger zerolog.Logger, collector *metrics.Collector) *ValidatorService {
	return &ValidatorService{
		placements: placements,
		profiles:   profiles,
		logger:     logger,
		collector:  collector,
	}
}

// Compile loads a container's placements and merges them with their
// definitions into an ordered ruleset. Malformed stored regexes are
// logged and skipped as constraints.
func (s *ValidatorService) Compile(ctx context.Context, c placement.Container) (schema.Ruleset, error) {
	if err := c.Validate(); err != nil {
		return schema.Ruleset{}, err
	}
	listed, err := s.placements.ListByContainer(ctx, c)
	if err != nil {
		return schema.Ruleset{}, err
	}
	ps := make([]placement.Placement, len(listed))
	defs := make(map[string]field.Definition, len(listed))
	for i, pf := range listed {
		ps[i] = pf.Placement
		defs[pf.Field.ID] = pf.Field
	}
	rs, warnings := schema.Compile(ps, defs)
	for _, key := range warnings {
		s.logger.Warn().Str("key", key).Stringer("container", c).Msg("stored validation regex does not compile, ignoring")
	}
	return rs, nil
}

// PublicFields returns the rules rendered to end users: visible
// placements only, in display order.
func (s *ValidatorService) PublicFields(ctx context.Context, c placement.Container) ([]schema.Rule, error) {
	rs, err := s.Compile(ctx, c)
	if err != nil {
		return nil, err
	}
	return rs.Visible(), nil
}

// Validate runs a payload against a container's compiled ruleset and
// returns all issues found.
func (s *ValidatorService) Validate(ctx context.Context, c placement.Container, p schema.Payload) (schema.Result, error) {
	rs, err := s.Compile(ctx, c)
	if err != nil {
		return schema.Result{}, err
	}
	res := rs.Validate(p)
	if !res.OK && s.collector != nil {
		s.collector.ValidationFailures.WithLabelValues(c.String()).Inc()
	}
	return res, nil
}

// Partition splits a payload into core and attribute maps by each
// field's write target. Unknown keys are dropped.
func (s *ValidatorService) Partition(ctx context.Context, c placement.Container, p schema.Payload) (core, attributes map[string]any, err error) {
	rs, err := s.Compile(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	core, attributes = rs.Partition(p)
	return core, attributes, nil
}

// SubmitScope validates a scope submission for an authenticated user
// and writes the partitioned values to the profile store. Attribute
// values merge into the existing bag, last write wins per key.
func (s *ValidatorService) SubmitScope(ctx context.Context, scope placement.Scope, userID string, p schema.Payload) error {
	if userID == "" {
		return faults.Validation("user id is required")
	}
	c := placement.ForScope(scope)
	rs, err := s.Compile(ctx, c)
	if err != nil {
		return err
	}
	res := rs.Validate(p)
	if !res.OK {
		if s.collector != nil {
			s.collector.ValidationFailures.WithLabelValues(c.String()).Inc()
		}
		return faults.Validation(res.Issues...)
	}

	core, attributes := rs.Partition(p)
	merged, err := s.mergeAttributes(ctx, userID, attributes)
	if err != nil {
		return err
	}
	if err := s.profiles.Upsert(ctx, userID, core, merged); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("scope", string(scope)).Msg("scope submission written")
	return nil
}

func (s *ValidatorService) mergeAttributes(ctx context.Context, userID string, attributes map[string]any) (profile.Attributes, error) {
	if len(attributes) == 0 {
		return nil, nil
	}
	rec, err := s.profiles.Get(ctx, userID)
	if err != nil && err != faults.ErrNotFound {
		return nil, err
	}
	return rec.Attributes.Merge(attributes), nil
}
