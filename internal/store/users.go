package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const userColumns = "id, name, email, avatar_url, created_at"

// InsertUser persists a user row.
func (o ops) InsertUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	user.CreatedAt = time.Now().UTC()
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`INSERT INTO users (id, name, email, avatar_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		nullableString(user.Email),
		nullableString(user.AvatarURL),
		timestamp(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser fetches a user by identifier. Returns nil when absent.
func (o ops) GetUser(ctx context.Context, id string) (*User, error) {
	row := o.q.QueryRowContext(ensureContext(ctx), `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// InsertSolarSystem persists the state container for a user. The UNIQUE
// constraint on user_id enforces exactly one system per user.
func (o ops) InsertSolarSystem(ctx context.Context, system *SolarSystem) error {
	if system == nil {
		return errors.New("solar system is nil")
	}
	now := time.Now().UTC()
	system.CreatedAt = now
	system.UpdatedAt = now
	if system.ThemeJSON == "" {
		system.ThemeJSON = "{}"
	}
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`INSERT INTO solar_systems (id, user_id, theme_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		system.ID,
		system.UserID,
		system.ThemeJSON,
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert solar system: %w", err)
	}
	return nil
}

// GetSolarSystemByUser fetches the system owned by a user. Returns nil when absent.
func (o ops) GetSolarSystemByUser(ctx context.Context, userID string) (*SolarSystem, error) {
	row := o.q.QueryRowContext(
		ensureContext(ctx),
		`SELECT id, user_id, theme_json, created_at, updated_at FROM solar_systems WHERE user_id = ?`,
		userID,
	)
	system, err := scanSolarSystem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get solar system: %w", err)
	}
	return system, nil
}

// GetSolarSystem fetches a system by its own identifier. Returns nil when absent.
func (o ops) GetSolarSystem(ctx context.Context, id string) (*SolarSystem, error) {
	row := o.q.QueryRowContext(
		ensureContext(ctx),
		`SELECT id, user_id, theme_json, created_at, updated_at FROM solar_systems WHERE id = ?`,
		id,
	)
	system, err := scanSolarSystem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get solar system: %w", err)
	}
	return system, nil
}

// TouchSolarSystem bumps the system's updated_at to now.
func (o ops) TouchSolarSystem(ctx context.Context, id string) error {
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`UPDATE solar_systems SET updated_at = ? WHERE id = ?`,
		timestamp(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("touch solar system: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		user      User
		email     sql.NullString
		avatarURL sql.NullString
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Name, &email, &avatarURL, &createdAt); err != nil {
		return nil, err
	}
	user.Email = email.String
	user.AvatarURL = avatarURL.String
	user.CreatedAt = parseTimestamp(createdAt)
	return &user, nil
}

func scanSolarSystem(row rowScanner) (*SolarSystem, error) {
	var (
		system    SolarSystem
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&system.ID, &system.UserID, &system.ThemeJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	system.CreatedAt = parseTimestamp(createdAt)
	system.UpdatedAt = parseTimestamp(updatedAt)
	return &system, nil
}
