package solar

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"orrery/internal/logging"
	"orrery/internal/services"
	"orrery/internal/store"
)

// predefinedTags are the shared global tags seeded on first startup.
var predefinedTags = []store.Tag{
	{Name: "Partner", Color: "#FF6B6B", Icon: "❤️"},
	{Name: "Family", Color: "#FFD93D", Icon: "\U0001F3E0"},
	{Name: "Close Friend", Color: "#4ECDC4", Icon: "\U0001F91D"},
	{Name: "Friend", Color: "#45B7D1", Icon: "\U0001F44B"},
	{Name: "Colleague", Color: "#96CEB4", Icon: "\U0001F4BC"},
	{Name: "Mentor", Color: "#DDA0DD", Icon: "\U0001F31F"},
	{Name: "Acquaintance", Color: "#95A5A6", Icon: "\U0001F464"},
}

// SeedPredefinedTags inserts any missing predefined tags. Safe to call on
// every startup.
func (s *Service) SeedPredefinedTags(ctx context.Context) error {
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.ListPredefinedTags(ctx)
		if err != nil {
			return err
		}
		names := make(map[string]struct{}, len(existing))
		for _, tag := range existing {
			names[tag.Name] = struct{}{}
		}
		for _, seed := range predefinedTags {
			if _, ok := names[seed.Name]; ok {
				continue
			}
			tag := seed
			tag.ID = uuid.NewString()
			tag.IsPredefined = true
			if err := tx.InsertTag(ctx, &tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "solar", "seed tags", "", err)
	}
	return nil
}

// TagParams describes a custom tag to create or the fields to change on one.
type TagParams struct {
	Name  string
	Color string
	Icon  string
}

// CreateTag creates a custom tag owned by the user's system. Tag changes do
// not touch people, so no snapshot is captured.
func (s *Service) CreateTag(ctx context.Context, userID string, params TagParams) (*store.Tag, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "solar", "create tag", "name is required", nil)
	}
	if params.Color == "" {
		return nil, services.Wrap(services.ErrValidation, "solar", "create tag", "color is required", nil)
	}

	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	tag := &store.Tag{
		ID:            uuid.NewString(),
		SolarSystemID: system.ID,
		Name:          name,
		Color:         params.Color,
		Icon:          params.Icon,
		IsPredefined:  false,
	}
	if err := s.store.InsertTag(ctx, tag); err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "create tag", "", err)
	}
	return tag, nil
}

// UpdateTagParams is a partial tag update. Nil fields are left untouched.
type UpdateTagParams struct {
	Name  *string
	Color *string
	Icon  *string
}

// UpdateTag modifies a custom tag. Predefined tags are immutable.
func (s *Service) UpdateTag(ctx context.Context, userID, tagID string, params UpdateTagParams) (*store.Tag, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	var updated *store.Tag
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		tag, err := ownedTag(ctx, tx, system.ID, tagID, "update tag")
		if err != nil {
			return err
		}
		if params.Name != nil {
			name := strings.TrimSpace(*params.Name)
			if name == "" {
				return services.Wrap(services.ErrValidation, "solar", "update tag", "name cannot be empty", nil)
			}
			tag.Name = name
		}
		if params.Color != nil {
			tag.Color = *params.Color
		}
		if params.Icon != nil {
			tag.Icon = *params.Icon
		}
		if err := tx.UpdateTag(ctx, tag); err != nil {
			return err
		}
		updated = tag
		return nil
	})
	if err != nil {
		if services.Fatal(err) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "solar", "update tag", "", err)
	}
	return updated, nil
}

// DeleteTag removes a custom tag and detaches it from any people that carry
// it. The detach is not a visible state change of its own, so no snapshot is
// captured; the people simply become untagged in the next capture.
func (s *Service) DeleteTag(ctx context.Context, userID, tagID string) error {
	system, err := s.System(ctx, userID)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		tag, err := ownedTag(ctx, tx, system.ID, tagID, "delete tag")
		if err != nil {
			return err
		}
		detached, err := tx.DetachTagFromPeople(ctx, tag.ID)
		if err != nil {
			return err
		}
		if detached > 0 {
			s.logger.Info("tag detached from people", logging.String("tag_id", tag.ID), logging.Int64("count", detached))
		}
		return tx.DeleteTag(ctx, tag.ID)
	})
	if err != nil {
		if services.Fatal(err) {
			return err
		}
		return services.Wrap(services.ErrTransient, "solar", "delete tag", "", err)
	}
	return nil
}

// ListTags returns predefined tags plus the user's custom tags.
func (s *Service) ListTags(ctx context.Context, userID string) ([]store.Tag, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTags(ctx, system.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "list tags", "", err)
	}
	return tags, nil
}

// PredefinedTags returns only the global predefined tags.
func (s *Service) PredefinedTags(ctx context.Context) ([]store.Tag, error) {
	tags, err := s.store.ListPredefinedTags(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "list predefined tags", "", err)
	}
	return tags, nil
}

// ownedTag loads a tag and enforces that it is a mutable custom tag of the
// given system.
func ownedTag(ctx context.Context, tx *store.Tx, systemID, tagID, op string) (*store.Tag, error) {
	tag, err := tx.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, services.Wrap(services.ErrNotFound, "solar", op, "tag "+tagID, nil)
	}
	if tag.IsPredefined {
		return nil, services.Wrap(services.ErrPredefinedTagImmutable, "solar", op, tag.Name, nil)
	}
	if tag.SolarSystemID != systemID {
		return nil, services.Wrap(services.ErrNotFound, "solar", op, "tag "+tagID, nil)
	}
	return tag, nil
}
