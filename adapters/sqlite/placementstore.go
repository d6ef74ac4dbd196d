package sqlite

import (
	"context"
	"database/sql"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
)

// PlacementStore implements ports.PlacementStore with SQLite.
type PlacementStore struct {
	db *DB
}

// NewPlacementStore creates a new SQLite placement store.
func NewPlacementStore(db *DB) *PlacementStore {
	return &PlacementStore{db: db}
}

// ListByContainer returns placements joined with their definitions,
// ascending by order index, ties broken by field key.
func (s *PlacementStore) ListByContainer(ctx context.Context, c placement.Container) ([]ports.PlacedField, error) {
	where, arg := containerClause(c)
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT p.id, p.field_id, COALESCE(p.scope, ''), COALESCE(p.form_id, ''),
		       p.order_index, p.visible, p.required, COALESCE(p.help_text, ''),
		       `+prefixedFieldColumns+`
		FROM form_field_placements p
		JOIN form_fields f ON f.id = p.field_id
		WHERE `+where+`
		ORDER BY p.order_index ASC, f.key ASC
	`, arg)
	if err != nil {
		return nil, faults.Storage("list placements", err)
	}
	defer rows.Close()

	var out []ports.PlacedField
	for rows.Next() {
		var pf ports.PlacedField
		var scope, formID, typ, writeTo, options string
		err := rows.Scan(
			&pf.Placement.ID, &pf.Placement.FieldID, &scope, &formID,
			&pf.Placement.OrderIndex, &pf.Placement.Visible, &pf.Placement.Required, &pf.Placement.HelpText,
			&pf.Field.ID, &pf.Field.Key, &pf.Field.Label, &typ, &writeTo,
			&pf.Field.ValidationRegex, &pf.Field.MinLength, &pf.Field.MaxLength,
			&options, &pf.Field.System, &pf.Field.CreatedAt, &pf.Field.UpdatedAt,
		)
		if err != nil {
			return nil, faults.Storage("scan placement", err)
		}
		pf.Placement.Container = decodeContainer(scope, formID)
		pf.Field.Type = field.Type(typ)
		pf.Field.WriteTo = field.WriteTo(writeTo)
		pf.Field.Options = decodeOptions(options)
		out = append(out, pf)
	}
	return out, faults.Storage("list placements", rows.Err())
}

// ListByField returns every placement of one field across containers.
func (s *PlacementStore) ListByField(ctx context.Context, fieldID string) ([]placement.Placement, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, field_id, COALESCE(scope, ''), COALESCE(form_id, ''),
		       order_index, visible, required, COALESCE(help_text, '')
		FROM form_field_placements
		WHERE field_id = ?
	`, fieldID)
	if err != nil {
		return nil, faults.Storage("list placements by field", err)
	}
	defer rows.Close()

	var out []placement.Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, faults.Storage("list placements by field", rows.Err())
}

// Get retrieves a placement by ID.
func (s *PlacementStore) Get(ctx context.Context, id string) (placement.Placement, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT id, field_id, COALESCE(scope, ''), COALESCE(form_id, ''),
		       order_index, visible, required, COALESCE(help_text, '')
		FROM form_field_placements
		WHERE id = ?
	`, id)
	return scanPlacement(row)
}

// Upsert creates or updates the placement for (field, container). The
// partial unique indexes on (field_id, scope) and (field_id, form_id)
// turn a create/create race into a Conflict instead of a duplicate.
func (s *PlacementStore) Upsert(ctx context.Context, p placement.Placement) error {
	where, arg := containerClause(p.Container)
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE form_field_placements
		SET order_index = ?, visible = ?, required = ?, help_text = ?
		WHERE field_id = ? AND `+where+`
	`, p.OrderIndex, p.Visible, p.Required, nullString(p.HelpText), p.FieldID, arg)
	if err != nil {
		return faults.Storage("update placement", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var scope, formID any
	if p.Container.IsForm() {
		formID = p.Container.FormID
	} else {
		scope = string(p.Container.Scope)
	}
	_, err = s.db.DB.ExecContext(ctx, `
		INSERT INTO form_field_placements (id, field_id, scope, form_id, order_index, visible, required, help_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.FieldID, scope, formID, p.OrderIndex, p.Visible, p.Required, nullString(p.HelpText))
	if isUniqueViolation(err) {
		return faults.Conflict("placement already exists for " + p.Container.String())
	}
	return faults.Storage("insert placement", err)
}

// SetOrderIndex writes one placement's order index verbatim.
func (s *PlacementStore) SetOrderIndex(ctx context.Context, id string, orderIndex int) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE form_field_placements SET order_index = ? WHERE id = ?
	`, orderIndex, id)
	if err != nil {
		return faults.Storage("set order index", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.ErrNotFound
	}
	return nil
}

// Remove deletes the placement for (field, container). Idempotent.
func (s *PlacementStore) Remove(ctx context.Context, fieldID string, c placement.Container) error {
	where, arg := containerClause(c)
	_, err := s.db.DB.ExecContext(ctx, `
		DELETE FROM form_field_placements WHERE field_id = ? AND `+where,
		fieldID, arg)
	return faults.Storage("remove placement", err)
}

// Delete removes a placement by ID within a container.
func (s *PlacementStore) Delete(ctx context.Context, id string, c placement.Container) error {
	where, arg := containerClause(c)
	res, err := s.db.DB.ExecContext(ctx, `
		DELETE FROM form_field_placements WHERE id = ? AND `+where,
		id, arg)
	if err != nil {
		return faults.Storage("delete placement", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.ErrNotFound
	}
	return nil
}

// CountByField returns how many placements reference a field.
func (s *PlacementStore) CountByField(ctx context.Context, fieldID string) (int, error) {
	var n int
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM form_field_placements WHERE field_id = ?
	`, fieldID).Scan(&n)
	return n, faults.Storage("count placements", err)
}

const prefixedFieldColumns = `f.id, f.key, COALESCE(f.label, ''), f.type, f.write_to,
	COALESCE(f.validation_regex, ''), COALESCE(f.min_length, 0), COALESCE(f.max_length, 0),
	COALESCE(f.options, ''), f.system, f.created_at, f.updated_at`

func containerClause(c placement.Container) (string, any) {
	if c.IsForm() {
		return "form_id = ?", c.FormID
	}
	return "scope = ?", string(c.Scope)
}

func decodeContainer(scope, formID string) placement.Container {
	if formID != "" {
		return placement.ForForm(formID)
	}
	return placement.ForScope(placement.Scope(scope))
}

func scanPlacement(row rowScanner) (placement.Placement, error) {
	var p placement.Placement
	var scope, formID string
	err := row.Scan(&p.ID, &p.FieldID, &scope, &formID,
		&p.OrderIndex, &p.Visible, &p.Required, &p.HelpText)
	if err == sql.ErrNoRows {
		return p, faults.ErrNotFound
	}
	if err != nil {
		return p, faults.Storage("scan placement", err)
	}
	p.Container = decodeContainer(scope, formID)
	return p, nil
}
