package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"orrery/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config, resolved %s", resolved)
	}
	if cfg.Video.FPS != 30 || cfg.Video.TransitionFrames != 15 {
		t.Fatalf("unexpected defaults: %+v", cfg.Video)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + dir + `"

[video]
fps = 24
hold_seconds = 1.5
transition_frames = 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("fps = %d, want 24", cfg.Video.FPS)
	}
	if got := cfg.HoldFrames(); got != 36 {
		t.Fatalf("HoldFrames = %d, want 36", got)
	}
	if cfg.Paths.StagingDir != filepath.Join(dir, "staging") {
		t.Fatalf("staging dir not derived from data dir: %s", cfg.Paths.StagingDir)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "orrery.db") {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[video]
fps = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for fps = 0")
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = base
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.GeneratedDir = filepath.Join(base, "generated")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{
		cfg.Paths.StagingDir,
		filepath.Join(cfg.Paths.GeneratedDir, "images"),
		filepath.Join(cfg.Paths.GeneratedDir, "videos"),
	} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}
