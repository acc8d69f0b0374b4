package solar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"orrery/internal/services"
	"orrery/internal/state"
	"orrery/internal/store"
)

// captureSnapshot builds the full-state document from the live rows visible
// inside tx and appends it to the snapshot log. It must run in the same
// transaction as the triggering mutation so it can never observe a stale
// pre-mutation view.
func captureSnapshot(ctx context.Context, tx *store.Tx, system *store.SolarSystem, changeType store.ChangeType, summary string) (*store.Snapshot, error) {
	doc, err := buildLiveState(ctx, tx, system)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal full state: %w", err)
	}

	snapshot := &store.Snapshot{
		ID:            uuid.NewString(),
		SolarSystemID: system.ID,
		FullState:     payload,
		ChangeType:    changeType,
		ChangeSummary: summary,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.InsertSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// liveStateReader is the row surface buildLiveState needs; both Store and Tx
// satisfy it.
type liveStateReader interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	ListActivePeople(ctx context.Context, systemID string) ([]store.Person, error)
	ListTags(ctx context.Context, systemID string) ([]store.Tag, error)
}

func buildLiveState(ctx context.Context, r liveStateReader, system *store.SolarSystem) (state.Document, error) {
	user, err := r.GetUser(ctx, system.UserID)
	if err != nil {
		return state.Document{}, err
	}
	if user == nil {
		return state.Document{}, services.Wrap(services.ErrNotFound, "solar", "build state", "owner user missing", nil)
	}

	people, err := r.ListActivePeople(ctx, system.ID)
	if err != nil {
		return state.Document{}, err
	}

	tags, err := r.ListTags(ctx, system.ID)
	if err != nil {
		return state.Document{}, err
	}
	tagsByID := make(map[string]store.Tag, len(tags))
	for _, tag := range tags {
		tagsByID[tag.ID] = tag
	}

	statePeople := make([]state.Person, 0, len(people))
	for _, person := range people {
		sp := state.Person{
			ID:                person.ID,
			Name:              person.Name,
			XPosition:         person.XPosition,
			YPosition:         person.YPosition,
			AvatarURL:         person.AvatarURL,
			OrbitSpeed:        person.OrbitSpeed,
			PlanetSize:        person.PlanetSize,
			CustomColor:       person.CustomColor,
			Notes:             person.Notes,
			RelationshipScore: person.RelationshipScore,
		}
		if person.TagID != "" {
			if tag, ok := tagsByID[person.TagID]; ok {
				sp.Tag = &state.Tag{Name: tag.Name, Color: tag.Color, Icon: tag.Icon}
			}
		}
		statePeople = append(statePeople, sp)
	}

	owner := state.User{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL}
	return state.Build(owner, statePeople, time.Now()), nil
}

// CurrentState builds the live full-state document for a user, the input for
// still-image generation and current-view queries.
func (s *Service) CurrentState(ctx context.Context, userID string) (state.Document, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return state.Document{}, err
	}
	return buildLiveState(ctx, s.store, system)
}

// ListSnapshots returns a metadata page ordered oldest-first plus the
// pagination-independent total.
func (s *Service) ListSnapshots(ctx context.Context, userID string, page, perPage int) ([]store.SnapshotSummary, int, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.store.ListSnapshots(ctx, system.ID, page, perPage)
}

// GetSnapshot returns a full snapshot record including its payload. Unknown
// ids, and ids belonging to another owner, fail with NotFound.
func (s *Service) GetSnapshot(ctx context.Context, userID, snapshotID string) (*store.Snapshot, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.store.GetSnapshot(ctx, system.ID, snapshotID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "get snapshot", "", err)
	}
	if snapshot == nil {
		return nil, services.Wrap(services.ErrNotFound, "solar", "get snapshot", "snapshot "+snapshotID, nil)
	}
	return snapshot, nil
}

// DecodeState parses the persisted full-state payload of a snapshot.
func DecodeState(snapshot *store.Snapshot) (state.Document, error) {
	var doc state.Document
	if err := json.Unmarshal(snapshot.FullState, &doc); err != nil {
		return state.Document{}, fmt.Errorf("decode snapshot %s: %w", snapshot.ID, err)
	}
	return doc, nil
}
