package memory

import (
	"context"
	"sync"

	"github.com/artpar/formgate/domain/profile"
	"github.com/artpar/formgate/pkg/faults"
)

// ProfileStore is an in-memory implementation of ports.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]profile.Record

	// UpsertErr, when set, fails every upsert (for testing error
	// propagation on authenticated merges).
	UpsertErr error
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]profile.Record)}
}

// Get retrieves a profile record.
func (s *ProfileStore) Get(ctx context.Context, userID string) (profile.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.profiles[userID]
	if !ok {
		return profile.Record{}, faults.ErrNotFound
	}
	r.Attributes = r.Attributes.Clone()
	return r, nil
}

// Upsert applies core values and, when attributes is non-empty,
// replaces the stored attribute bag.
func (s *ProfileStore) Upsert(ctx context.Context, userID string, core map[string]any, attributes profile.Attributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	r := s.profiles[userID]
	r.UserID = userID
	r.ApplyCore(core)
	if len(attributes) > 0 {
		r.Attributes = attributes.Clone()
	}
	if r.Attributes == nil {
		r.Attributes = profile.Attributes{}
	}
	s.profiles[userID] = r
	return nil
}
