package sqlite

import (
	"context"
	"encoding/json"

	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
)

// SubmissionStore implements ports.SubmissionStore with SQLite.
type SubmissionStore struct {
	db *DB
}

// NewSubmissionStore creates a new SQLite submission store.
func NewSubmissionStore(db *DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Insert appends a submission.
func (s *SubmissionStore) Insert(ctx context.Context, sub ports.Submission) error {
	payload, err := json.Marshal(sub.Payload)
	if err != nil {
		return faults.Storage("encode submission", err)
	}
	_, err = s.db.DB.ExecContext(ctx, `
		INSERT INTO form_submissions (id, form_id, user_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sub.ID, sub.FormID, nullString(sub.UserID), string(payload), sub.CreatedAt)
	return faults.Storage("insert submission", err)
}

// ListByForm returns the most recent submissions for a form.
func (s *SubmissionStore) ListByForm(ctx context.Context, formID string, limit int) ([]ports.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, form_id, COALESCE(user_id, ''), payload, created_at
		FROM form_submissions
		WHERE form_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, formID, limit)
	if err != nil {
		return nil, faults.Storage("list submissions", err)
	}
	defer rows.Close()

	var subs []ports.Submission
	for rows.Next() {
		var sub ports.Submission
		var payload string
		if err := rows.Scan(&sub.ID, &sub.FormID, &sub.UserID, &payload, &sub.CreatedAt); err != nil {
			return nil, faults.Storage("scan submission", err)
		}
		if err := json.Unmarshal([]byte(payload), &sub.Payload); err != nil {
			return nil, faults.Storage("decode submission", err)
		}
		subs = append(subs, sub)
	}
	return subs, faults.Storage("list submissions", rows.Err())
}
