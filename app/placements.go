package app

import (
	"context"

	"github.com/artpar/formgate/adapters/metrics"
	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
	"github.com/rs/zerolog"
)

// PlacementService manages where fields appear: per-container order,
// visibility, required flag, and help text.
type PlacementService struct {
	catalog    *CatalogService
	placements ports.PlacementStore
	ids        ports.IDGenerator
	logger     zerolog.Logger
	collector  *metrics.Collector // optional
}

// NewPlacementService creates a new placement service.
func NewPlacementService(catalog *CatalogService, placements ports.PlacementStore, ids ports.IDGenerator, logger zerolog.Logger, collector *metrics.Collector) *PlacementService {
	return &PlacementService{
		catalog:    catalog,
		placements: placements,
		ids:        ids,
		logger:     logger,
		collector:  collector,
	}
}

// List returns a container's placements joined with definitions,
// ascending by order index, ties broken by field key.
func (s *PlacementService) List(ctx context.Context, c placement.Container) ([]ports.PlacedField, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.placements.ListByContainer(ctx, c)
}

// Place creates or updates a placement in a container. The field is
// addressed by id or by key; an unknown key creates the definition via
// the catalog with base applied. A new placement without an explicit
// order index is appended after the container's current maximum.
func (s *PlacementService) Place(ctx context.Context, c placement.Container, fieldID, key string, base field.Patch, o placement.Overrides) (placement.Placement, error) {
	if err := c.Validate(); err != nil {
		return placement.Placement{}, err
	}

	var def field.Definition
	var err error
	if fieldID != "" {
		def, err = s.catalog.Get(ctx, fieldID)
	} else {
		def, err = s.catalog.ResolveOrCreate(ctx, key, base)
	}
	if err != nil {
		return placement.Placement{}, err
	}

	// Re-placing an already-placed field updates its settings in place
	// and keeps its position unless an explicit index is supplied.
	if existing, ok, err := s.find(ctx, def.ID, c); err != nil {
		return placement.Placement{}, err
	} else if ok {
		o.Apply(&existing)
		if err := s.placements.Upsert(ctx, existing); err != nil {
			return placement.Placement{}, err
		}
		return existing, nil
	}

	if o.OrderIndex == nil {
		next, err := s.nextIndex(ctx, c)
		if err != nil {
			return placement.Placement{}, err
		}
		o.OrderIndex = &next
	}

	p := placement.New(s.ids.New(), def.ID, c, *o.OrderIndex, o)
	if err := s.placements.Upsert(ctx, p); err != nil {
		return placement.Placement{}, err
	}
	s.logger.Debug().Str("key", def.Key).Stringer("container", c).Msg("placement created")
	return p, nil
}

// Update applies overrides to an existing placement, addressed by its
// id within a container, optionally patching the shared field
// definition in the same call.
func (s *PlacementService) Update(ctx context.Context, c placement.Container, placementID string, o placement.Overrides, base field.Patch) (placement.Placement, error) {
	if err := c.Validate(); err != nil {
		return placement.Placement{}, err
	}
	p, err := s.placements.Get(ctx, placementID)
	if err != nil {
		return placement.Placement{}, err
	}
	if p.Container != c {
		return placement.Placement{}, faults.ErrNotFound
	}

	o.Apply(&p)
	if err := s.placements.Upsert(ctx, p); err != nil {
		return placement.Placement{}, err
	}
	if !base.Empty() {
		if _, err := s.catalog.Patch(ctx, p.FieldID, base); err != nil {
			return placement.Placement{}, err
		}
	}
	return p, nil
}

// Remove deletes a placement by id within a container. The field
// definition is untouched.
func (s *PlacementService) Remove(ctx context.Context, c placement.Container, placementID string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.placements.Delete(ctx, placementID, c)
}

// ReorderItem pairs a placement id with its final order index.
type ReorderItem struct {
	ID         string
	OrderIndex int
}

// ReorderExplicit writes caller-computed order indices verbatim. The
// whole batch is rejected when any id cannot be resolved inside the
// target container; ties are allowed and resolved by key at read time.
func (s *PlacementService) ReorderExplicit(ctx context.Context, c placement.Container, items []ReorderItem) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(items) == 0 {
		return faults.Validation("at least one placement is required")
	}
	for _, it := range items {
		if err := s.mustBelong(ctx, c, it.ID); err != nil {
			return err
		}
	}
	for _, it := range items {
		if err := s.placements.SetOrderIndex(ctx, it.ID, it.OrderIndex); err != nil {
			return err
		}
	}
	if s.collector != nil {
		s.collector.Reorders.WithLabelValues("explicit").Inc()
	}
	return nil
}

// ReorderSequential assigns gap-10 indices (0, 10, 20, ...) following
// the supplied id order, so a later single-item insert can slot between
// neighbours without a full resequence.
func (s *PlacementService) ReorderSequential(ctx context.Context, c placement.Container, ids []string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return faults.Validation("at least one placement is required")
	}
	for _, id := range ids {
		if err := s.mustBelong(ctx, c, id); err != nil {
			return err
		}
	}
	indices := placement.SequentialIndexes(len(ids))
	for i, id := range ids {
		if err := s.placements.SetOrderIndex(ctx, id, indices[i]); err != nil {
			return err
		}
	}
	if s.collector != nil {
		s.collector.Reorders.WithLabelValues("sequential").Inc()
	}
	return nil
}

func (s *PlacementService) mustBelong(ctx context.Context, c placement.Container, id string) error {
	if id == "" {
		return faults.Validation("placement id is required")
	}
	p, err := s.placements.Get(ctx, id)
	if err == faults.ErrNotFound {
		return faults.Validationf("placement %s does not exist", id)
	}
	if err != nil {
		return err
	}
	if p.Container != c {
		return faults.Validationf("placement %s does not belong to %s", id, c)
	}
	return nil
}

func (s *PlacementService) nextIndex(ctx context.Context, c placement.Container) (int, error) {
	listed, err := s.placements.ListByContainer(ctx, c)
	if err != nil {
		return 0, err
	}
	ps := make([]placement.Placement, len(listed))
	for i, pf := range listed {
		ps[i] = pf.Placement
	}
	max, hasAny := placement.MaxIndex(ps)
	return placement.NextIndex(max, hasAny), nil
}

func (s *PlacementService) find(ctx context.Context, fieldID string, c placement.Container) (placement.Placement, bool, error) {
	all, err := s.placements.ListByField(ctx, fieldID)
	if err != nil {
		return placement.Placement{}, false, err
	}
	for _, p := range all {
		if p.Container == c {
			return p, true, nil
		}
	}
	return placement.Placement{}, false, nil
}
