package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"orrery/internal/services"
	"orrery/internal/testsupport"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheck(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")

	results := Check([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("present binary reported unavailable: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary reported available: %#v", results[1])
	}
}

func TestCheckEmptyCommand(t *testing.T) {
	results := Check([]Requirement{{Name: "Blank", Command: "   "}})
	if results[0].Available {
		t.Fatal("blank command reported available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("detail = %q", results[0].Detail)
	}
}

func TestCheckFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Video.FFmpegBinary = writeStub(t, t.TempDir(), "ffmpeg")
	if err := CheckFFmpeg(cfg); err != nil {
		t.Fatalf("CheckFFmpeg with stub: %v", err)
	}

	cfg.Video.FFmpegBinary = "clearly-not-present-binary"
	err := CheckFFmpeg(cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
