package solar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"orrery/internal/logging"
	"orrery/internal/services"
	"orrery/internal/state"
	"orrery/internal/store"
)

// NewPersonParams describes a person to add. Positions are normalized
// coordinates in [-1, 1] with the owner at the origin.
type NewPersonParams struct {
	Name              string
	AvatarURL         string
	XPosition         float64
	YPosition         float64
	TagID             string
	OrbitSpeed        float64
	PlanetSize        float64
	CustomColor       string
	Notes             string
	RelationshipScore *int
}

// UpdatePersonParams is a partial update. Nil fields are left untouched; a
// non-nil empty TagID clears the tag.
type UpdatePersonParams struct {
	Name              *string
	AvatarURL         *string
	XPosition         *float64
	YPosition         *float64
	TagID             *string
	OrbitSpeed        *float64
	PlanetSize        *float64
	CustomColor       *string
	Notes             *string
	RelationshipScore *int
}

// PositionUpdate is one entry of a bulk reposition.
type PositionUpdate struct {
	PersonID  string
	XPosition float64
	YPosition float64
}

// AddPerson inserts a person and captures a person_added snapshot in the same
// transaction.
func (s *Service) AddPerson(ctx context.Context, userID string, params NewPersonParams) (*store.Person, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "solar", "add person", "name is required", nil)
	}
	if err := validatePosition(params.XPosition, params.YPosition); err != nil {
		return nil, err
	}

	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	person := &store.Person{
		ID:                 uuid.NewString(),
		SolarSystemID:      system.ID,
		Name:               name,
		AvatarURL:          strings.TrimSpace(params.AvatarURL),
		XPosition:          params.XPosition,
		YPosition:          params.YPosition,
		DistanceFromCenter: state.Distance(params.XPosition, params.YPosition),
		TagID:              params.TagID,
		OrbitSpeed:         params.OrbitSpeed,
		PlanetSize:         params.PlanetSize,
		CustomColor:        params.CustomColor,
		Notes:              params.Notes,
		RelationshipScore:  params.RelationshipScore,
		AddedAt:            now,
	}

	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		tagName := state.Untagged
		if person.TagID != "" {
			tag, err := resolveTag(ctx, tx, system.ID, person.TagID)
			if err != nil {
				return err
			}
			tagName = tag.Name
		}
		if err := tx.InsertPerson(ctx, person); err != nil {
			return err
		}
		if err := tx.TouchSolarSystem(ctx, system.ID); err != nil {
			return err
		}
		summary := fmt.Sprintf("Added %s as %s", person.Name, tagName)
		_, err := captureSnapshot(ctx, tx, system, store.ChangePersonAdded, summary)
		return err
	})
	if err != nil {
		if services.Fatal(err) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "solar", "add person", "", err)
	}

	s.logger.Info("person added", logging.String("person_id", person.ID), logging.String("name", person.Name))
	return person, nil
}

// UpdatePerson applies a partial update and captures a snapshot classifying
// the change. Position changes win over tag changes when both occur.
func (s *Service) UpdatePerson(ctx context.Context, userID, personID string, params UpdatePersonParams) (*store.Person, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	var updated *store.Person
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		person, err := tx.GetPerson(ctx, personID)
		if err != nil {
			return err
		}
		if person == nil || person.SolarSystemID != system.ID {
			return services.Wrap(services.ErrNotFound, "solar", "update person", "person "+personID, nil)
		}
		if !person.Active() {
			return services.Wrap(services.ErrNotFound, "solar", "update person", "person "+personID+" has been removed", nil)
		}

		oldDistance := person.DistanceFromCenter
		positionChanged := false
		tagChanged := false

		if params.Name != nil {
			name := strings.TrimSpace(*params.Name)
			if name == "" {
				return services.Wrap(services.ErrValidation, "solar", "update person", "name cannot be empty", nil)
			}
			person.Name = name
		}
		if params.AvatarURL != nil {
			person.AvatarURL = strings.TrimSpace(*params.AvatarURL)
		}
		if params.XPosition != nil || params.YPosition != nil {
			if params.XPosition != nil {
				person.XPosition = *params.XPosition
			}
			if params.YPosition != nil {
				person.YPosition = *params.YPosition
			}
			if err := validatePosition(person.XPosition, person.YPosition); err != nil {
				return err
			}
			person.DistanceFromCenter = state.Distance(person.XPosition, person.YPosition)
			positionChanged = true
		}

		tagName := state.Untagged
		if params.TagID != nil {
			person.TagID = *params.TagID
			tagChanged = true
			if person.TagID != "" {
				tag, err := resolveTag(ctx, tx, system.ID, person.TagID)
				if err != nil {
					return err
				}
				tagName = tag.Name
			}
		}

		if params.OrbitSpeed != nil {
			person.OrbitSpeed = *params.OrbitSpeed
		}
		if params.PlanetSize != nil {
			person.PlanetSize = *params.PlanetSize
		}
		if params.CustomColor != nil {
			person.CustomColor = *params.CustomColor
		}
		if params.Notes != nil {
			person.Notes = *params.Notes
		}
		if params.RelationshipScore != nil {
			person.RelationshipScore = params.RelationshipScore
		}

		if err := tx.UpdatePerson(ctx, person); err != nil {
			return err
		}
		if err := tx.TouchSolarSystem(ctx, system.ID); err != nil {
			return err
		}

		var changeType store.ChangeType
		var summary string
		switch {
		case positionChanged:
			direction := "further"
			if person.DistanceFromCenter < oldDistance {
				direction = "closer"
			}
			changeType = store.ChangePersonMoved
			summary = fmt.Sprintf("Moved %s %s", person.Name, direction)
		case tagChanged:
			changeType = store.ChangePersonTagChanged
			summary = fmt.Sprintf("Changed %s's tag to %s", person.Name, tagName)
		default:
			changeType = store.ChangePersonMoved
			summary = fmt.Sprintf("Updated %s", person.Name)
		}
		if _, err := captureSnapshot(ctx, tx, system, changeType, summary); err != nil {
			return err
		}

		updated = person
		return nil
	})
	if err != nil {
		if services.Fatal(err) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "solar", "update person", "", err)
	}

	s.logger.Info("person updated", logging.String("person_id", updated.ID))
	return updated, nil
}

// RemovePerson soft-deletes a person so that historic snapshots keep its
// record, then captures a person_removed snapshot.
func (s *Service) RemovePerson(ctx context.Context, userID, personID string) error {
	system, err := s.System(ctx, userID)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		person, err := tx.GetPerson(ctx, personID)
		if err != nil {
			return err
		}
		if person == nil || person.SolarSystemID != system.ID || !person.Active() {
			return services.Wrap(services.ErrNotFound, "solar", "remove person", "person "+personID, nil)
		}
		if err := tx.MarkPersonRemoved(ctx, person.ID, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.TouchSolarSystem(ctx, system.ID); err != nil {
			return err
		}
		summary := fmt.Sprintf("Removed %s", person.Name)
		_, err = captureSnapshot(ctx, tx, system, store.ChangePersonRemoved, summary)
		return err
	})
	if err != nil {
		if services.Fatal(err) {
			return err
		}
		return services.Wrap(services.ErrTransient, "solar", "remove person", "", err)
	}

	s.logger.Info("person removed", logging.String("person_id", personID))
	return nil
}

// BulkUpdatePositions repositions several people and captures exactly one
// bulk_update snapshot for the whole batch.
func (s *Service) BulkUpdatePositions(ctx context.Context, userID string, updates []PositionUpdate) ([]store.Person, error) {
	if len(updates) == 0 {
		return nil, services.Wrap(services.ErrValidation, "solar", "bulk update", "no updates provided", nil)
	}
	for _, update := range updates {
		if err := validatePosition(update.XPosition, update.YPosition); err != nil {
			return nil, err
		}
	}

	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	var result []store.Person
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		result = result[:0]
		for _, update := range updates {
			person, err := tx.GetPerson(ctx, update.PersonID)
			if err != nil {
				return err
			}
			if person == nil || person.SolarSystemID != system.ID || !person.Active() {
				return services.Wrap(services.ErrNotFound, "solar", "bulk update", "person "+update.PersonID+" not found or not active", nil)
			}
			person.XPosition = update.XPosition
			person.YPosition = update.YPosition
			person.DistanceFromCenter = state.Distance(update.XPosition, update.YPosition)
			if err := tx.UpdatePerson(ctx, person); err != nil {
				return err
			}
			result = append(result, *person)
		}
		if err := tx.TouchSolarSystem(ctx, system.ID); err != nil {
			return err
		}
		summary := fmt.Sprintf("Bulk updated %d people's positions", len(result))
		_, err := captureSnapshot(ctx, tx, system, store.ChangeBulkUpdate, summary)
		return err
	})
	if err != nil {
		if services.Fatal(err) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "solar", "bulk update", "", err)
	}

	s.logger.Info("bulk position update", logging.Int("count", len(result)))
	return result, nil
}

// ListPeople returns the active people of a user's system.
func (s *Service) ListPeople(ctx context.Context, userID string) ([]store.Person, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}
	people, err := s.store.ListActivePeople(ctx, system.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "list people", "", err)
	}
	return people, nil
}

func validatePosition(x, y float64) error {
	if x < -1 || x > 1 || y < -1 || y > 1 {
		return services.Wrap(services.ErrValidation, "solar", "validate position",
			fmt.Sprintf("position (%g, %g) outside [-1, 1]", x, y), nil)
	}
	return nil
}

// resolveTag verifies a tag reference is usable by the system: either a
// predefined tag or one the system owns.
func resolveTag(ctx context.Context, tx *store.Tx, systemID, tagID string) (*store.Tag, error) {
	tag, err := tx.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, services.Wrap(services.ErrValidation, "solar", "resolve tag", "tag "+tagID+" does not exist", nil)
	}
	if !tag.IsPredefined && tag.SolarSystemID != systemID {
		return nil, services.Wrap(services.ErrValidation, "solar", "resolve tag", "tag "+tagID+" belongs to another system", nil)
	}
	return tag, nil
}
