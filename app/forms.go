package app

import (
	"context"

	"github.com/artpar/formgate/adapters/metrics"
	"github.com/artpar/formgate/domain/form"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/domain/schema"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
	"github.com/rs/zerolog"
)

// FormService manages custom forms and their public submission path.
type FormService struct {
	forms       ports.FormStore
	submissions ports.SubmissionStore
	profiles    ports.ProfileStore
	validator   *ValidatorService
	ids         ports.IDGenerator
	clock       ports.Clock
	logger      zerolog.Logger
	collector   *metrics.Collector // optional
}

// NewFormService creates a new form service.
func NewFormService(forms ports.FormStore, submissions ports.SubmissionStore, profiles ports.ProfileStore, validator *ValidatorService, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger, collector *metrics.Collector) *FormService {
	return &FormService{
		forms:       forms,
		submissions: submissions,
		profiles:    profiles,
		validator:   validator,
		ids:         ids,
		clock:       clock,
		logger:      logger,
		collector:   collector,
	}
}

// Create registers a new custom form. The slug is normalized; a
// duplicate slug is a Conflict.
func (s *FormService) Create(ctx context.Context, slug, title, description string, active, published bool) (form.Form, error) {
	f, err := form.New(s.ids.New(), slug, title, description, active, published, s.clock.Now())
	if err != nil {
		return form.Form{}, err
	}
	if err := s.forms.Create(ctx, f); err != nil {
		return form.Form{}, err
	}
	s.logger.Info().Str("slug", f.Slug).Str("form_id", f.ID).Msg("form created")
	return f, nil
}

// Get retrieves a form by ID, regardless of its flags.
func (s *FormService) Get(ctx context.Context, id string) (form.Form, error) {
	return s.forms.Get(ctx, id)
}

// List returns all forms, newest first.
func (s *FormService) List(ctx context.Context) ([]form.Form, error) {
	return s.forms.List(ctx)
}

// GetBySlug is the public read path. Inactive or unpublished forms are
// indistinguishable from absent ones.
func (s *FormService) GetBySlug(ctx context.Context, slug string) (form.Form, error) {
	f, err := s.forms.GetBySlug(ctx, form.NormalizeSlug(slug))
	if err != nil {
		return form.Form{}, err
	}
	if !f.IsActive || !f.IsPublished {
		return form.Form{}, faults.ErrNotFound
	}
	return f, nil
}

// GetBySlugAdmin retrieves a form by slug without visibility gating.
func (s *FormService) GetBySlugAdmin(ctx context.Context, slug string) (form.Form, error) {
	return s.forms.GetBySlug(ctx, form.NormalizeSlug(slug))
}

// Patch applies a partial update to a form.
func (s *FormService) Patch(ctx context.Context, id string, p form.Patch) (form.Form, error) {
	if err := p.Validate(); err != nil {
		return form.Form{}, err
	}
	f, err := s.forms.Get(ctx, id)
	if err != nil {
		return form.Form{}, err
	}
	p.Apply(&f)
	f.UpdatedAt = s.clock.Now()
	if err := s.forms.Update(ctx, f); err != nil {
		return form.Form{}, err
	}
	return f, nil
}

// Delete removes a form along with its placements. Field definitions
// placed on the form survive in the catalog.
func (s *FormService) Delete(ctx context.Context, id string) error {
	f, err := s.forms.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("slug", f.Slug).Str("form_id", id).Msg("form deleted")
	return nil
}

// PublicFields returns the visible compiled rules of a public form.
func (s *FormService) PublicFields(ctx context.Context, slug string) (form.Form, []schema.Rule, error) {
	f, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return form.Form{}, nil, err
	}
	rules, err := s.validator.PublicFields(ctx, placement.ForForm(f.ID))
	if err != nil {
		return form.Form{}, nil, err
	}
	return f, rules, nil
}

// Submissions lists the most recent captured submissions for a form.
func (s *FormService) Submissions(ctx context.Context, formID string, limit int) ([]ports.Submission, error) {
	if _, err := s.forms.Get(ctx, formID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.submissions.ListByForm(ctx, formID, limit)
}

// Submit handles a public form submission. The form must be active; an
// unpublished form is still submittable when its slug is known, since
// publishing gates discovery, not capture. Authenticated submissions
// merge into the user's profile and propagate write errors. Anonymous
// submissions are captured best effort: the validated payload is
// appended to the submissions log and a capture failure is logged, not
// surfaced, so the user never sees a success turn into an error.
func (s *FormService) Submit(ctx context.Context, slug, userID string, p schema.Payload) error {
	f, err := s.forms.GetBySlug(ctx, form.NormalizeSlug(slug))
	if err != nil {
		return err
	}
	if !f.IsActive {
		return faults.Conflict("Form is inactive")
	}

	c := placement.ForForm(f.ID)
	rs, err := s.validator.Compile(ctx, c)
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

	if userID != "" {
		return s.submitAuthenticated(ctx, f, rs, userID, p)
	}
	s.submitAnonymous(ctx, f, rs, p)
	return nil
}

func (s *FormService) submitAuthenticated(ctx context.Context, f form.Form, rs schema.Ruleset, userID string, p schema.Payload) error {
	core, attributes := rs.Partition(p)
	merged, err := s.validator.mergeAttributes(ctx, userID, attributes)
	if err != nil {
		return err
	}
	if err := s.profiles.Upsert(ctx, userID, core, merged); err != nil {
		return err
	}
	if s.collector != nil {
		s.collector.SubmissionsTotal.WithLabelValues(f.Slug, "authenticated").Inc()
	}
	s.logger.Info().Str("slug", f.Slug).Str("user_id", userID).Msg("form submission written to profile")
	return nil
}

func (s *FormService) submitAnonymous(ctx context.Context, f form.Form, rs schema.Ruleset, p schema.Payload) {
	core, attributes := rs.Partition(p)
	payload := make(map[string]any, len(core)+len(attributes))
	for k, v := range core {
		payload[k] = v
	}
	for k, v := range attributes {
		payload[k] = v
	}
	sub := ports.Submission{
		ID:        s.ids.New(),
		FormID:    f.ID,
		Payload:   payload,
		CreatedAt: s.clock.Now(),
	}
	if err := s.submissions.Insert(ctx, sub); err != nil {
		s.logger.Error().Err(err).Str("slug", f.Slug).Msg("anonymous submission capture failed")
		return
	}
	if s.collector != nil {
		s.collector.SubmissionsTotal.WithLabelValues(f.Slug, "anonymous").Inc()
	}
}
