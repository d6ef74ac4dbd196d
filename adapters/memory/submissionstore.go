package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/artpar/formgate/ports"
)

// SubmissionStore is an in-memory implementation of ports.SubmissionStore.
type SubmissionStore struct {
	mu   sync.RWMutex
	subs []ports.Submission

	// InsertErr, when set, fails every insert (for testing the
	// best-effort anonymous capture path).
	InsertErr error
}

// NewSubmissionStore creates a new in-memory submission store.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{}
}

// Insert appends a submission.
func (s *SubmissionStore) Insert(ctx context.Context, sub ports.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.subs = append(s.subs, sub)
	return nil
}

// ListByForm returns the most recent submissions for a form.
func (s *SubmissionStore) ListByForm(ctx context.Context, formID string, limit int) ([]ports.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.Submission
	for _, sub := range s.subs {
		if sub.FormID == formID {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
