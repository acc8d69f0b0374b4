package testsupport

import (
	"path/filepath"
	"testing"

	"orrery/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = base
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.GeneratedDir = filepath.Join(base, "generated")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	// Small frames keep render-heavy tests fast.
	cfg.Render.Width = 64
	cfg.Render.Height = 64
	cfg.Video.RenderWorkers = 2
	return &cfg
}
