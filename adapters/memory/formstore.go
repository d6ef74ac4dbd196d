package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/artpar/formgate/domain/form"
	"github.com/artpar/formgate/pkg/faults"
)

// FormStore is an in-memory implementation of ports.FormStore.
type FormStore struct {
	mu     sync.RWMutex
	forms  map[string]form.Form // by ID
	bySlug map[string]string    // slug -> ID
}

// NewFormStore creates a new in-memory form store.
func NewFormStore() *FormStore {
	return &FormStore{
		forms:  make(map[string]form.Form),
		bySlug: make(map[string]string),
	}
}

// Get retrieves a form by ID.
func (s *FormStore) Get(ctx context.Context, id string) (form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.forms[id]
	if !ok {
		return form.Form{}, faults.ErrNotFound
	}
	return f, nil
}

// GetBySlug retrieves a form by slug.
func (s *FormStore) GetBySlug(ctx context.Context, slug string) (form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return form.Form{}, faults.ErrNotFound
	}
	return s.forms[id], nil
}

// List returns all forms, newest first.
func (s *FormStore) List(ctx context.Context) ([]form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]form.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create stores a new form.
func (s *FormStore) Create(ctx context.Context, f form.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[f.Slug]; exists {
		return faults.Conflict("form slug already exists: " + f.Slug)
	}
	s.forms[f.ID] = f
	s.bySlug[f.Slug] = f.ID
	return nil
}

// Update modifies a form.
func (s *FormStore) Update(ctx context.Context, f form.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.forms[f.ID]
	if !ok {
		return faults.ErrNotFound
	}
	if other, exists := s.bySlug[f.Slug]; exists && other != f.ID {
		return faults.Conflict("form slug already exists: " + f.Slug)
	}
	delete(s.bySlug, old.Slug)
	s.forms[f.ID] = f
	s.bySlug[f.Slug] = f.ID
	return nil
}

// Delete removes a form.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[id]
	if !ok {
		return faults.ErrNotFound
	}
	delete(s.forms, id)
	delete(s.bySlug, f.Slug)
	return nil
}
