package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const tagColumns = "id, solar_system_id, name, color, icon, is_predefined"

// InsertTag persists a tag row.
func (o ops) InsertTag(ctx context.Context, tag *Tag) error {
	if tag == nil {
		return errors.New("tag is nil")
	}
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`INSERT INTO tags (id, solar_system_id, name, color, icon, is_predefined) VALUES (?, ?, ?, ?, ?, ?)`,
		tag.ID,
		nullableString(tag.SolarSystemID),
		tag.Name,
		tag.Color,
		nullableString(tag.Icon),
		boolToInt(tag.IsPredefined),
	)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// GetTag fetches a tag by identifier. Returns nil when absent.
func (o ops) GetTag(ctx context.Context, id string) (*Tag, error) {
	row := o.q.QueryRowContext(ensureContext(ctx), `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// ListTags returns the predefined tags plus the custom tags of one system,
// predefined first, then by name.
func (o ops) ListTags(ctx context.Context, systemID string) ([]Tag, error) {
	rows, err := o.q.QueryContext(
		ensureContext(ctx),
		`SELECT `+tagColumns+` FROM tags
         WHERE is_predefined = 1 OR solar_system_id = ?
         ORDER BY is_predefined DESC, name ASC`,
		systemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// ListPredefinedTags returns the shared tag set.
func (o ops) ListPredefinedTags(ctx context.Context) ([]Tag, error) {
	rows, err := o.q.QueryContext(
		ensureContext(ctx),
		`SELECT `+tagColumns+` FROM tags WHERE is_predefined = 1 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list predefined tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// UpdateTag rewrites a custom tag's mutable fields.
func (o ops) UpdateTag(ctx context.Context, tag *Tag) error {
	if tag == nil {
		return errors.New("tag is nil")
	}
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`UPDATE tags SET name = ?, color = ?, icon = ? WHERE id = ?`,
		tag.Name,
		tag.Color,
		nullableString(tag.Icon),
		tag.ID,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return nil
}

// DetachTagFromPeople nulls the tag reference on every person pointing at the
// tag and returns how many rows changed. People themselves are untouched.
func (o ops) DetachTagFromPeople(ctx context.Context, tagID string) (int64, error) {
	res, err := o.q.ExecContext(
		ensureContext(ctx),
		`UPDATE people SET tag_id = NULL WHERE tag_id = ?`,
		tagID,
	)
	if err != nil {
		return 0, fmt.Errorf("detach tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("detach tag rows affected: %w", err)
	}
	return affected, nil
}

// DeleteTag removes a tag row. Callers must detach references first.
func (o ops) DeleteTag(ctx context.Context, tagID string) error {
	_, err := o.q.ExecContext(ensureContext(ctx), `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

func scanTag(row rowScanner) (*Tag, error) {
	var (
		tag          Tag
		systemID     sql.NullString
		icon         sql.NullString
		isPredefined int
	)
	if err := row.Scan(&tag.ID, &systemID, &tag.Name, &tag.Color, &icon, &isPredefined); err != nil {
		return nil, err
	}
	tag.SolarSystemID = systemID.String
	tag.Icon = icon.String
	tag.IsPredefined = isPredefined != 0
	return &tag, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
