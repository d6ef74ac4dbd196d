// Package app contains the engine services: catalog, placements, sync,
// validation, and custom forms. Services orchestrate the stores behind
// ports and carry no state of their own beyond their dependencies.
package app

import (
	"context"
	"fmt"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
	"github.com/rs/zerolog"
)

// CatalogService owns field definitions. It knows nothing about where
// a field is placed; that is the placement service's concern.
type CatalogService struct {
	fields     ports.FieldStore
	placements ports.PlacementStore
	ids        ports.IDGenerator
	clock      ports.Clock
	logger     zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(fields ports.FieldStore, placements ports.PlacementStore, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		fields:     fields,
		placements: placements,
		ids:        ids,
		clock:      clock,
		logger:     logger,
	}
}

// Get retrieves a definition by ID.
func (s *CatalogService) Get(ctx context.Context, id string) (field.Definition, error) {
	return s.fields.Get(ctx, id)
}

// List returns all definitions ordered by key.
func (s *CatalogService) List(ctx context.Context) ([]field.Definition, error) {
	return s.fields.List(ctx)
}

// ResolveOrCreate returns the definition for key, creating it when the
// key has never been seen. The key is normalized first, deriving from
// the base label when empty. Explicitly supplied base attributes are
// patched onto an existing definition; omitted ones are never blanked.
func (s *CatalogService) ResolveOrCreate(ctx context.Context, key string, base field.Patch) (field.Definition, error) {
	label := ""
	if base.Label != nil {
		label = *base.Label
	}
	k, err := field.DeriveKey(key, label)
	if err != nil {
		return field.Definition{}, err
	}
	if err := base.Validate(); err != nil {
		return field.Definition{}, err
	}

	existing, err := s.fields.GetByKey(ctx, k)
	if err == nil {
		if base.Empty() {
			return existing, nil
		}
		base.Apply(&existing)
		if existing.Type == field.TypeSelect && len(existing.Options) == 0 {
			return field.Definition{}, faults.Validation("options are required when type is select")
		}
		existing.UpdatedAt = s.clock.Now()
		if err := s.fields.Update(ctx, existing); err != nil {
			return field.Definition{}, err
		}
		return existing, nil
	}
	if err != faults.ErrNotFound {
		return field.Definition{}, err
	}

	def, err := field.New(s.ids.New(), k, base, s.clock.Now())
	if err != nil {
		return field.Definition{}, err
	}
	if err := s.fields.Create(ctx, def); err != nil {
		// A concurrent create of the same key won the race; reuse it.
		if faults.IsConflict(err) {
			return s.fields.GetByKey(ctx, k)
		}
		return field.Definition{}, err
	}
	s.logger.Info().Str("key", k).Str("field_id", def.ID).Msg("field definition created")
	return def, nil
}

// Patch validates and applies a partial update to a definition. Edits
// to shared attributes affect every placement of the key.
func (s *CatalogService) Patch(ctx context.Context, id string, base field.Patch) (field.Definition, error) {
	if err := base.Validate(); err != nil {
		return field.Definition{}, err
	}
	def, err := s.fields.Get(ctx, id)
	if err != nil {
		return field.Definition{}, err
	}
	if base.Empty() {
		return def, nil
	}
	base.Apply(&def)
	if def.Type == field.TypeSelect && len(def.Options) == 0 {
		return field.Definition{}, faults.Validation("options are required when type is select")
	}
	def.UpdatedAt = s.clock.Now()
	if err := s.fields.Update(ctx, def); err != nil {
		return field.Definition{}, err
	}
	s.logger.Debug().Str("field_id", id).Msg("field definition updated")
	return def, nil
}

// Delete removes a definition. System fields and definitions still
// referenced by any placement cannot be deleted.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	def, err := s.fields.Get(ctx, id)
	if err != nil {
		return err
	}
	if def.System {
		return faults.Conflict("system field cannot be deleted")
	}
	n, err := s.placements.CountByField(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return faults.Conflict(fmt.Sprintf("field is still placed in %d container(s)", n))
	}
	if err := s.fields.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("key", def.Key).Str("field_id", id).Msg("field definition deleted")
	return nil
}
