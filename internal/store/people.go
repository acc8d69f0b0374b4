package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const personColumns = `id, solar_system_id, name, avatar_url, x_position, y_position,
    distance_from_center, tag_id, orbit_speed, planet_size, custom_color, notes,
    relationship_score, added_at, removed_at`

// InsertPerson persists a person row.
func (o ops) InsertPerson(ctx context.Context, person *Person) error {
	if person == nil {
		return errors.New("person is nil")
	}
	person.AddedAt = time.Now().UTC()
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`INSERT INTO people (
            id, solar_system_id, name, avatar_url, x_position, y_position,
            distance_from_center, tag_id, orbit_speed, planet_size, custom_color,
            notes, relationship_score, added_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID,
		person.SolarSystemID,
		person.Name,
		nullableString(person.AvatarURL),
		person.XPosition,
		person.YPosition,
		person.DistanceFromCenter,
		nullableString(person.TagID),
		person.OrbitSpeed,
		person.PlanetSize,
		nullableString(person.CustomColor),
		nullableString(person.Notes),
		nullableInt(person.RelationshipScore),
		timestamp(person.AddedAt),
	)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

// GetPerson fetches a person by identifier. Returns nil when absent.
func (o ops) GetPerson(ctx context.Context, id string) (*Person, error) {
	row := o.q.QueryRowContext(ensureContext(ctx), `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return person, nil
}

// ListActivePeople returns the non-removed people of a system, oldest first.
func (o ops) ListActivePeople(ctx context.Context, systemID string) ([]Person, error) {
	rows, err := o.q.QueryContext(
		ensureContext(ctx),
		`SELECT `+personColumns+` FROM people
         WHERE solar_system_id = ? AND removed_at IS NULL
         ORDER BY added_at ASC, id ASC`,
		systemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

// UpdatePerson rewrites a person's mutable fields.
func (o ops) UpdatePerson(ctx context.Context, person *Person) error {
	if person == nil {
		return errors.New("person is nil")
	}
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`UPDATE people
         SET name = ?, avatar_url = ?, x_position = ?, y_position = ?,
             distance_from_center = ?, tag_id = ?, orbit_speed = ?, planet_size = ?,
             custom_color = ?, notes = ?, relationship_score = ?
         WHERE id = ?`,
		person.Name,
		nullableString(person.AvatarURL),
		person.XPosition,
		person.YPosition,
		person.DistanceFromCenter,
		nullableString(person.TagID),
		person.OrbitSpeed,
		person.PlanetSize,
		nullableString(person.CustomColor),
		nullableString(person.Notes),
		nullableInt(person.RelationshipScore),
		person.ID,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return nil
}

// MarkPersonRemoved flips a person to removed status. The row stays so
// historical snapshots keep a valid identity to reference.
func (o ops) MarkPersonRemoved(ctx context.Context, id string, removedAt time.Time) error {
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`UPDATE people SET removed_at = ? WHERE id = ?`,
		timestamp(removedAt),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark person removed: %w", err)
	}
	return nil
}

func scanPerson(row rowScanner) (*Person, error) {
	var (
		person      Person
		avatarURL   sql.NullString
		tagID       sql.NullString
		customColor sql.NullString
		notes       sql.NullString
		score       sql.NullInt64
		addedAt     string
		removedAt   sql.NullString
	)
	if err := row.Scan(
		&person.ID,
		&person.SolarSystemID,
		&person.Name,
		&avatarURL,
		&person.XPosition,
		&person.YPosition,
		&person.DistanceFromCenter,
		&tagID,
		&person.OrbitSpeed,
		&person.PlanetSize,
		&customColor,
		&notes,
		&score,
		&addedAt,
		&removedAt,
	); err != nil {
		return nil, err
	}
	person.AvatarURL = avatarURL.String
	person.TagID = tagID.String
	person.CustomColor = customColor.String
	person.Notes = notes.String
	if score.Valid {
		value := int(score.Int64)
		person.RelationshipScore = &value
	}
	person.AddedAt = parseTimestamp(addedAt)
	if removedAt.Valid {
		t := parseTimestamp(removedAt.String)
		person.RemovedAt = &t
	}
	return &person, nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
