package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/pkg/faults"
)

// FieldStore implements ports.FieldStore with SQLite.
type FieldStore struct {
	db *DB
}

// NewFieldStore creates a new SQLite field store.
func NewFieldStore(db *DB) *FieldStore {
	return &FieldStore{db: db}
}

const fieldColumns = `id, key, COALESCE(label, ''), type, write_to,
	COALESCE(validation_regex, ''), COALESCE(min_length, 0), COALESCE(max_length, 0),
	COALESCE(options, ''), system, created_at, updated_at`

// Get retrieves a definition by ID.
func (s *FieldStore) Get(ctx context.Context, id string) (field.Definition, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT `+fieldColumns+` FROM form_fields WHERE id = ?
	`, id)
	return scanField(row)
}

// GetByKey retrieves a definition by its unique key.
func (s *FieldStore) GetByKey(ctx context.Context, key string) (field.Definition, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT `+fieldColumns+` FROM form_fields WHERE key = ?
	`, key)
	return scanField(row)
}

// List returns all definitions ordered by key.
func (s *FieldStore) List(ctx context.Context) ([]field.Definition, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT `+fieldColumns+` FROM form_fields ORDER BY key ASC
	`)
	if err != nil {
		return nil, faults.Storage("list fields", err)
	}
	defer rows.Close()

	var defs []field.Definition
	for rows.Next() {
		d, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, faults.Storage("list fields", rows.Err())
}

// Create stores a new definition.
func (s *FieldStore) Create(ctx context.Context, d field.Definition) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO form_fields (id, key, label, type, write_to, validation_regex,
		                         min_length, max_length, options, system, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Key, d.Label, string(d.Type), string(d.WriteTo),
		nullString(d.ValidationRegex), nullInt(d.MinLength), nullInt(d.MaxLength),
		encodeOptions(d.Options), d.System, d.CreatedAt, d.UpdatedAt)
	if isUniqueViolation(err) {
		return faults.Conflict("field key already exists: " + d.Key)
	}
	return faults.Storage("create field", err)
}

// Update modifies an existing definition in place.
func (s *FieldStore) Update(ctx context.Context, d field.Definition) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE form_fields
		SET key = ?, label = ?, type = ?, write_to = ?, validation_regex = ?,
		    min_length = ?, max_length = ?, options = ?, system = ?, updated_at = ?
		WHERE id = ?
	`, d.Key, d.Label, string(d.Type), string(d.WriteTo), nullString(d.ValidationRegex),
		nullInt(d.MinLength), nullInt(d.MaxLength), encodeOptions(d.Options),
		d.System, d.UpdatedAt, d.ID)
	if isUniqueViolation(err) {
		return faults.Conflict("field key already exists: " + d.Key)
	}
	if err != nil {
		return faults.Storage("update field", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.ErrNotFound
	}
	return nil
}

// Delete removes a definition row.
func (s *FieldStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM form_fields WHERE id = ?`, id)
	if err != nil {
		return faults.Storage("delete field", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (field.Definition, error) {
	var d field.Definition
	var typ, writeTo, options string
	err := row.Scan(&d.ID, &d.Key, &d.Label, &typ, &writeTo,
		&d.ValidationRegex, &d.MinLength, &d.MaxLength,
		&options, &d.System, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return d, faults.ErrNotFound
	}
	if err != nil {
		return d, faults.Storage("scan field", err)
	}
	d.Type = field.Type(typ)
	d.WriteTo = field.WriteTo(writeTo)
	d.Options = decodeOptions(options)
	return d, nil
}

func encodeOptions(opts []string) any {
	if len(opts) == 0 {
		return nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil
	}
	return string(b)
}

// decodeOptions normalizes a stored options column: JSON array of
// strings, with a comma-separated fallback for hand-edited rows.
func decodeOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(raw), &opts); err == nil {
		return opts
	}
	var out []string
	for _, part := range splitTrim(raw, ',') {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitTrim(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == sep {
			part := s[start:i]
			for len(part) > 0 && part[0] == ' ' {
				part = part[1:]
			}
			for len(part) > 0 && part[len(part)-1] == ' ' {
				part = part[:len(part)-1]
			}
			out = append(out, part)
			start = i + 1
		}
	}
	return out
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
