package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
)

// PlacementStore is an in-memory implementation of ports.PlacementStore.
// It shares the FieldStore so listings can join definitions.
type PlacementStore struct {
	mu         sync.RWMutex
	placements map[string]placement.Placement // by ID
	fields     *FieldStore
}

// NewPlacementStore creates a new in-memory placement store joined to fields.
func NewPlacementStore(fields *FieldStore) *PlacementStore {
	return &PlacementStore{
		placements: make(map[string]placement.Placement),
		fields:     fields,
	}
}

// ListByContainer returns placements joined with their definitions,
// ascending by order index, ties broken by field key. Placements whose
// definition is gone are skipped, matching the SQL join.
func (s *PlacementStore) ListByContainer(ctx context.Context, c placement.Container) ([]ports.PlacedField, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.PlacedField
	for _, p := range s.placements {
		if p.Container != c {
			continue
		}
		d, err := s.fields.Get(ctx, p.FieldID)
		if err != nil {
			continue
		}
		out = append(out, ports.PlacedField{Placement: p, Field: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Placement.OrderIndex != out[j].Placement.OrderIndex {
			return out[i].Placement.OrderIndex < out[j].Placement.OrderIndex
		}
		return out[i].Field.Key < out[j].Field.Key
	})
	return out, nil
}

// ListByField returns every placement of one field.
func (s *PlacementStore) ListByField(ctx context.Context, fieldID string) ([]placement.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []placement.Placement
	for _, p := range s.placements {
		if p.FieldID == fieldID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get retrieves a placement by ID.
func (s *PlacementStore) Get(ctx context.Context, id string) (placement.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.placements[id]
	if !ok {
		return placement.Placement{}, faults.ErrNotFound
	}
	return p, nil
}

// Upsert creates or updates the placement for (field, container).
func (s *PlacementStore) Upsert(ctx context.Context, p placement.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.placements {
		if existing.FieldID == p.FieldID && existing.Container == p.Container {
			p.ID = id
			s.placements[id] = p
			return nil
		}
	}
	s.placements[p.ID] = p
	return nil
}

// SetOrderIndex writes one placement's order index verbatim.
func (s *PlacementStore) SetOrderIndex(ctx context.Context, id string, orderIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.placements[id]
	if !ok {
		return faults.ErrNotFound
	}
	p.OrderIndex = orderIndex
	s.placements[id] = p
	return nil
}

// Remove deletes the placement for (field, container). Idempotent.
func (s *PlacementStore) Remove(ctx context.Context, fieldID string, c placement.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.placements {
		if p.FieldID == fieldID && p.Container == c {
			delete(s.placements, id)
		}
	}
	return nil
}

// Delete removes a placement by ID within a container.
func (s *PlacementStore) Delete(ctx context.Context, id string, c placement.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.placements[id]
	if !ok || p.Container != c {
		return faults.ErrNotFound
	}
	delete(s.placements, id)
	return nil
}

// CountByField returns how many placements reference a field.
func (s *PlacementStore) CountByField(ctx context.Context, fieldID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.placements {
		if p.FieldID == fieldID {
			n++
		}
	}
	return n, nil
}
