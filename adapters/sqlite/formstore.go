package sqlite

import (
	"context"
	"database/sql"

	"github.com/artpar/formgate/domain/form"
	"github.com/artpar/formgate/pkg/faults"
)

// FormStore implements ports.FormStore with SQLite.
type FormStore struct {
	db *DB
}

// NewFormStore creates a new SQLite form store.
func NewFormStore(db *DB) *FormStore {
	return &FormStore{db: db}
}

const formColumns = `id, slug, title, COALESCE(description, ''), is_active, is_published, created_at, updated_at`

// Get retrieves a form by ID.
func (s *FormStore) Get(ctx context.Context, id string) (form.Form, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT `+formColumns+` FROM forms WHERE id = ?
	`, id)
	return scanForm(row)
}

// GetBySlug retrieves a form by its unique slug.
func (s *FormStore) GetBySlug(ctx context.Context, slug string) (form.Form, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT `+formColumns+` FROM forms WHERE slug = ?
	`, slug)
	return scanForm(row)
}

// List returns all forms, newest first.
func (s *FormStore) List(ctx context.Context) ([]form.Form, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT `+formColumns+` FROM forms ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, faults.Storage("list forms", err)
	}
	defer rows.Close()

	var forms []form.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, faults.Storage("list forms", rows.Err())
}

// Create stores a new form.
func (s *FormStore) Create(ctx context.Context, f form.Form) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO forms (id, slug, title, description, is_active, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Slug, f.Title, f.Description, f.IsActive, f.IsPublished, f.CreatedAt, f.UpdatedAt)
	if isUniqueViolation(err) {
		return faults.Conflict("form slug already exists: " + f.Slug)
	}
	return faults.Storage("create form", err)
}

// Update modifies a form.
func (s *FormStore) Update(ctx context.Context, f form.Form) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE forms
		SET slug = ?, title = ?, description = ?, is_active = ?, is_published = ?, updated_at = ?
		WHERE id = ?
	`, f.Slug, f.Title, f.Description, f.IsActive, f.IsPublished, f.UpdatedAt, f.ID)
	if isUniqueViolation(err) {
		return faults.Conflict("form slug already exists: " + f.Slug)
	}
	if err != nil {
		return faults.Storage("update form", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.ErrNotFound
	}
	return nil
}

// Delete removes a form. Its placements and submissions cascade.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return faults.Storage("delete form", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.ErrNotFound
	}
	return nil
}

func scanForm(row rowScanner) (form.Form, error) {
	var f form.Form
	err := row.Scan(&f.ID, &f.Slug, &f.Title, &f.Description,
		&f.IsActive, &f.IsPublished, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return f, faults.ErrNotFound
	}
	if err != nil {
		return f, faults.Storage("scan form", err)
	}
	return f, nil
}
