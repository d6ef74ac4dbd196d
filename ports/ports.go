// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/form"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/domain/profile"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies secrets (the admin API token).
type Hasher interface {
	// Hash generates a hash from plaintext.
	Hash(plaintext string) ([]byte, error)
	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// FieldStore persists field definitions (the catalog).
type FieldStore interface {
	// Get retrieves a definition by ID. Returns faults.ErrNotFound when absent.
	Get(ctx context.Context, id string) (field.Definition, error)

	// GetByKey retrieves a definition by its unique key.
	GetByKey(ctx context.Context, key string) (field.Definition, error)

	// List returns all definitions ordered by key.
	List(ctx context.Context) ([]field.Definition, error)

	// Create stores a new definition. Returns a Conflict on duplicate key.
	Create(ctx context.Context, d field.Definition) error

	// Update modifies an existing definition in place.
	Update(ctx context.Context, d field.Definition) error

	// Delete removes a definition. The caller is responsible for the
	// referenced/system preconditions; the store only deletes the row.
	Delete(ctx context.Context, id string) error
}

// PlacedField is a placement joined with its field definition.
type PlacedField struct {
	Placement placement.Placement
	Field     field.Definition
}

// PlacementStore persists the field/container join.
type PlacementStore interface {
	// ListByContainer returns placements joined with their definitions,
	// ascending by order index, ties broken by field key.
	ListByContainer(ctx context.Context, c placement.Container) ([]PlacedField, error)

	// ListByField returns every placement of one field across all containers.
	ListByField(ctx context.Context, fieldID string) ([]placement.Placement, error)

	// Get retrieves a placement by ID. Returns faults.ErrNotFound when absent.
	Get(ctx context.Context, id string) (placement.Placement, error)

	// Upsert creates or updates the placement for (field, container).
	// A storage-level unique constraint backs the at-most-one invariant;
	// a race surfaces as a Conflict.
	Upsert(ctx context.Context, p placement.Placement) error

	// SetOrderIndex writes one placement's order index verbatim.
	SetOrderIndex(ctx context.Context, id string, orderIndex int) error

	// Remove deletes the placement for (field, container). Removing a
	// non-existent placement is not an error; the synchronizer's diff
	// relies on idempotence.
	Remove(ctx context.Context, fieldID string, c placement.Container) error

	// Delete removes a placement by ID within a container. Returns
	// faults.ErrNotFound when no such placement exists there.
	Delete(ctx context.Context, id string, c placement.Container) error

	// CountByField returns how many placements reference a field.
	CountByField(ctx context.Context, fieldID string) (int, error)
}

// FormStore persists custom forms.
type FormStore interface {
	// Get retrieves a form by ID. Returns faults.ErrNotFound when absent.
	Get(ctx context.Context, id string) (form.Form, error)

	// GetBySlug retrieves a form by its unique slug.
	GetBySlug(ctx context.Context, slug string) (form.Form, error)

	// List returns all forms, newest first.
	List(ctx context.Context) ([]form.Form, error)

	// Create stores a new form. Returns a Conflict on duplicate slug.
	Create(ctx context.Context, f form.Form) error

	// Update modifies a form.
	Update(ctx context.Context, f form.Form) error

	// Delete removes a form and its placements.
	Delete(ctx context.Context, id string) error
}

// Submission is one captured form submission.
type Submission struct {
	ID        string
	FormID    string
	UserID    string // empty for anonymous captures
	Payload   map[string]any
	CreatedAt time.Time
}

// SubmissionStore is the append-only submissions log.
type SubmissionStore interface {
	// Insert appends a submission.
	Insert(ctx context.Context, s Submission) error

	// ListByForm returns the most recent submissions for a form.
	ListByForm(ctx context.Context, formID string, limit int) ([]Submission, error)
}

// ProfileStore is the external profile writer seam. The engine writes
// partitioned values exclusively through it.
type ProfileStore interface {
	// Get retrieves a profile record. Returns faults.ErrNotFound when absent.
	Get(ctx context.Context, userID string) (profile.Record, error)

	// Upsert applies core column values and, when attributes is
	// non-empty, replaces the stored attribute bag with it. Callers
	// wanting merge semantics read first and merge themselves.
	Upsert(ctx context.Context, userID string, core map[string]any, attributes profile.Attributes) error
}
