package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/artpar/formgate/domain/profile"
	"github.com/artpar/formgate/pkg/faults"
)

// ProfileStore implements ports.ProfileStore with SQLite. It backs the
// external profile-writer seam so the engine runs end-to-end out of the
// box; deployments with their own profile service swap it at the port.
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new SQLite profile store.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get retrieves a profile record.
func (s *ProfileStore) Get(ctx context.Context, userID string) (profile.Record, error) {
	var r profile.Record
	var attrs string
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, display_name, avatar_url, bio, role, attributes
		FROM profiles WHERE id = ?
	`, userID).Scan(&r.UserID, &r.DisplayName, &r.AvatarURL, &r.Bio, &r.Role, &attrs)
	if err == sql.ErrNoRows {
		return r, faults.ErrNotFound
	}
	if err != nil {
		return r, faults.Storage("get profile", err)
	}
	if err := json.Unmarshal([]byte(attrs), &r.Attributes); err != nil {
		return r, faults.Storage("decode profile attributes", err)
	}
	return r, nil
}

// Upsert applies core column values and, when attributes is non-empty,
// replaces the stored attribute bag.
func (s *ProfileStore) Upsert(ctx context.Context, userID string, core map[string]any, attributes profile.Attributes) error {
	existing, err := s.Get(ctx, userID)
	if err != nil && err != faults.ErrNotFound {
		return err
	}
	rec := existing
	rec.UserID = userID
	rec.ApplyCore(core)
	if len(attributes) > 0 {
		rec.Attributes = attributes
	}
	if rec.Attributes == nil {
		rec.Attributes = profile.Attributes{}
	}

	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return faults.Storage("encode profile attributes", err)
	}
	_, err = s.db.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, avatar_url, bio, role, attributes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			role = excluded.role,
			attributes = excluded.attributes,
			updated_at = excluded.updated_at
	`, rec.UserID, rec.DisplayName, rec.AvatarURL, rec.Bio, rec.Role, string(attrs), time.Now().UTC())
	return faults.Storage("upsert profile", err)
}
