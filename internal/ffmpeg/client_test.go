package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orrery/internal/services"
)

// writeScript creates an executable stub that stands in for ffmpeg.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestEncodeSuccess(t *testing.T) {
	// The stub writes its last argument, mimicking ffmpeg producing the
	// temporary output file.
	binary := writeScript(t, `for arg; do :; done
echo data > "$arg"
`)
	cli := NewCLI(WithBinary(binary))

	output := filepath.Join(t.TempDir(), "timeline.mp4")
	if err := cli.Encode(context.Background(), t.TempDir(), 30, output); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(output + ".tmp.mp4"); !os.IsNotExist(err) {
		t.Error("temporary output left behind")
	}
}

func TestEncodeFailureLeavesNoArtifact(t *testing.T) {
	binary := writeScript(t, `echo "frame_%06d.png: No such file or directory" >&2
exit 1
`)
	cli := NewCLI(WithBinary(binary))

	output := filepath.Join(t.TempDir(), "timeline.mp4")
	err := cli.Encode(context.Background(), t.TempDir(), 30, output)
	if !errors.Is(err, services.ErrEncodingFailed) {
		t.Fatalf("expected encoding failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "No such file or directory") {
		t.Errorf("error does not surface ffmpeg stderr: %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("failed encode left an artifact at the output path")
	}
}

func TestEncodeValidatesArguments(t *testing.T) {
	cli := NewCLI()
	if err := cli.Encode(context.Background(), "", 30, "out.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("empty frames dir: %v", err)
	}
	if err := cli.Encode(context.Background(), "frames", 0, "out.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("zero fps: %v", err)
	}
	if err := cli.Encode(context.Background(), "frames", 30, ""); !errors.Is(err, services.ErrValidation) {
		t.Errorf("empty output: %v", err)
	}
}

func TestCountFrames(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(FramePath(dir, i), []byte("png"), 0o644); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	count, err := CountFrames(dir)
	if err != nil {
		t.Fatalf("CountFrames: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	if _, err := CountFrames(t.TempDir()); err == nil {
		t.Error("empty dir should error")
	}
}
