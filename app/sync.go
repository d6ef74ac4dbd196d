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

// SyncService reconciles one field's placements against a desired set
// of containers in a single declarative call.
type SyncService struct {
	catalog    *CatalogService
	placements ports.PlacementStore
	ids        ports.IDGenerator
	logger     zerolog.Logger
	collector  *metrics.Collector // optional
}

// NewSyncService creates a new sync service.
func NewSyncService(catalog *CatalogService, placements ports.PlacementStore, ids ports.IDGenerator, logger zerolog.Logger, collector *metrics.Collector) *SyncService {
	return &SyncService{
		catalog:    catalog,
		placements: placements,
		ids:        ids,
		logger:     logger,
		collector:  collector,
	}
}

// SyncResult reports what a sync changed.
type SyncResult struct {
	Field   field.Definition
	Added   []placement.Container
	Removed []placement.Container
}

// Sync resolves or creates the field for key, then adds placements for
// desired containers it is missing from and removes placements from
// containers outside the desired set. Existing placements in desired
// containers keep their order and per-container settings. The desired
// set must be non-empty and stay within one namespace: all scopes or
// all forms. A scope sync never touches form placements and vice versa.
func (s *SyncService) Sync(ctx context.Context, key string, desired []placement.Container, base field.Patch, overrides map[placement.Container]placement.Overrides) (SyncResult, error) {
	if len(desired) == 0 {
		return SyncResult{}, faults.Validation("select at least one scope")
	}
	forms := desired[0].IsForm()
	for _, c := range desired {
		if err := c.Validate(); err != nil {
			return SyncResult{}, err
		}
		if c.IsForm() != forms {
			return SyncResult{}, faults.Validation("cannot mix scopes and forms in one sync")
		}
	}

	def, err := s.catalog.ResolveOrCreate(ctx, key, base)
	if err != nil {
		return SyncResult{}, err
	}

	all, err := s.placements.ListByField(ctx, def.ID)
	if err != nil {
		return SyncResult{}, err
	}
	var existing []placement.Container
	for _, p := range all {
		if p.Container.IsForm() == forms {
			existing = append(existing, p.Container)
		}
	}

	toAdd, toRemove := placement.Diff(existing, desired)

	for _, c := range toAdd {
		next, err := s.nextIndex(ctx, c)
		if err != nil {
			return SyncResult{}, err
		}
		o := overrides[c]
		if o.OrderIndex == nil {
			o.OrderIndex = &next
		}
		p := placement.New(s.ids.New(), def.ID, c, *o.OrderIndex, o)
		if err := s.placements.Upsert(ctx, p); err != nil {
			return SyncResult{}, err
		}
	}
	for _, c := range toRemove {
		if err := s.placements.Remove(ctx, def.ID, c); err != nil {
			return SyncResult{}, err
		}
	}

	// Overrides for containers the field was already placed in are
	// applied in place so a sync can also retune settings.
	for _, c := range desired {
		o, ok := overrides[c]
		if !ok || contains(toAdd, c) {
			continue
		}
		if err := s.applyOverrides(ctx, def.ID, c, o); err != nil {
			return SyncResult{}, err
		}
	}

	if s.collector != nil {
		s.collector.SyncPlacements.WithLabelValues("added").Add(float64(len(toAdd)))
		s.collector.SyncPlacements.WithLabelValues("removed").Add(float64(len(toRemove)))
	}
	s.logger.Info().
		Str("key", def.Key).
		Int("added", len(toAdd)).
		Int("removed", len(toRemove)).
		Msg("placements synced")

	return SyncResult{Field: def, Added: toAdd, Removed: toRemove}, nil
}

func (s *SyncService) applyOverrides(ctx context.Context, fieldID string, c placement.Container, o placement.Overrides) error {
	all, err := s.placements.ListByField(ctx, fieldID)
	if err != nil {
		return err
	}
	for _, p := range all {
		if p.Container != c {
			continue
		}
		o.Apply(&p)
		return s.placements.Upsert(ctx, p)
	}
	return nil
}

func (s *SyncService) nextIndex(ctx context.Context, c placement.Container) (int, error) {
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

func contains(cs []placement.Container, c placement.Container) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
