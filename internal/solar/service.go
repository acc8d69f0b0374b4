package solar

import (
	"context"
	"log/slog"

	"orrery/internal/logging"
	"orrery/internal/services"
	"orrery/internal/store"
)

// Service owns the live-state CRUD operations and the snapshot rule: every
// visible-state mutation commits together with exactly one snapshot of the
// post-mutation state.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logging.NewComponentLogger(logger, "solar"),
	}
}

// System resolves the solar system owned by a user.
func (s *Service) System(ctx context.Context, userID string) (*store.SolarSystem, error) {
	system, err := s.store.GetSolarSystemByUser(ctx, userID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "get system", "", err)
	}
	if system == nil {
		return nil, services.Wrap(services.ErrNotFound, "solar", "get system", "no solar system for user "+userID, nil)
	}
	return system, nil
}
