package testsupport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"orrery/internal/config"
	"orrery/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedSystem inserts a user plus their solar system and returns both.
func SeedSystem(t testing.TB, st *store.Store, name string) (*store.User, *store.SolarSystem) {
	t.Helper()

	ctx := context.Background()
	user := &store.User{ID: uuid.NewString(), Name: name}
	system := &store.SolarSystem{ID: uuid.NewString(), UserID: user.ID}
	err := st.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertUser(ctx, user); err != nil {
			return err
		}
		return tx.InsertSolarSystem(ctx, system)
	})
	if err != nil {
		t.Fatalf("seed system: %v", err)
	}
	return user, system
}
