// Package memory provides in-memory implementations of storage ports,
// used by service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/pkg/faults"
)

// FieldStore is an in-memory implementation of ports.FieldStore.
type FieldStore struct {
	mu     sync.RWMutex
	fields map[string]field.Definition // by ID
	byKey  map[string]string           // key -> ID
}

// NewFieldStore creates a new in-memory field store.
func NewFieldStore() *FieldStore {
	return &FieldStore{
		fields: make(map[string]field.Definition),
		byKey:  make(map[string]string),
	}
}

// Get retrieves a definition by ID.
func (s *FieldStore) Get(ctx context.Context, id string) (field.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.fields[id]
	if !ok {
		return field.Definition{}, faults.ErrNotFound
	}
	return d, nil
}

// GetByKey retrieves a definition by key.
func (s *FieldStore) GetByKey(ctx context.Context, key string) (field.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return field.Definition{}, faults.ErrNotFound
	}
	return s.fields[id], nil
}

// List returns all definitions ordered by key.
func (s *FieldStore) List(ctx context.Context) ([]field.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]field.Definition, 0, len(s.fields))
	for _, d := range s.fields {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Create stores a new definition.
func (s *FieldStore) Create(ctx context.Context, d field.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[d.Key]; exists {
		return faults.Conflict("field key already exists: " + d.Key)
	}
	s.fields[d.ID] = d
	s.byKey[d.Key] = d.ID
	return nil
}

// Update modifies an existing definition.
func (s *FieldStore) Update(ctx context.Context, d field.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.fields[d.ID]
	if !ok {
		return faults.ErrNotFound
	}
	if other, exists := s.byKey[d.Key]; exists && other != d.ID {
		return faults.Conflict("field key already exists: " + d.Key)
	}
	delete(s.byKey, old.Key)
	s.fields[d.ID] = d
	s.byKey[d.Key] = d.ID
	return nil
}

// Delete removes a definition.
func (s *FieldStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.fields[id]
	if !ok {
		return faults.ErrNotFound
	}
	delete(s.fields, id)
	delete(s.byKey, d.Key)
	return nil
}
