package solar

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"orrery/internal/logging"
	"orrery/internal/services"
	"orrery/internal/store"
)

// NewUserParams describes an account to create.
type NewUserParams struct {
	Name      string
	Email     string
	AvatarURL string
}

// CreateUser creates the account, its solar system, and the genesis snapshot
// in one transaction. Every system therefore has at least one snapshot from
// the moment it exists.
func (s *Service) CreateUser(ctx context.Context, params NewUserParams) (*store.User, *store.SolarSystem, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, nil, services.Wrap(services.ErrValidation, "solar", "create user", "name is required", nil)
	}

	now := time.Now().UTC()
	user := &store.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.TrimSpace(params.Email),
		AvatarURL: strings.TrimSpace(params.AvatarURL),
		CreatedAt: now,
	}
	system := &store.SolarSystem{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertUser(ctx, user); err != nil {
			return err
		}
		if err := tx.InsertSolarSystem(ctx, system); err != nil {
			return err
		}
		_, err := captureSnapshot(ctx, tx, system, store.ChangeSystemCreated, "Solar system created")
		return err
	})
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "solar", "create user", "", err)
	}

	s.logger.Info("user created", logging.String("user_id", user.ID), logging.String("system_id", system.ID))
	return user, system, nil
}

// GetUser looks up an account by id.
func (s *Service) GetUser(ctx context.Context, id string) (*store.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "get user", "", err)
	}
	if user == nil {
		return nil, services.Wrap(services.ErrNotFound, "solar", "get user", "user "+id, nil)
	}
	return user, nil
}
