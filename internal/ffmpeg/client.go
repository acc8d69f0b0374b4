package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"orrery/internal/services"
)

var commandContext = exec.CommandContext

// framePattern matches the zero padded filenames the frame renderer emits.
const framePattern = "frame_%06d.png"

// Client defines frame stitching behaviour.
type Client interface {
	Encode(ctx context.Context, framesDir string, fps int, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds a single encode invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary  string
	timeout time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", timeout: 10 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Encode stitches the numbered frames in framesDir into an H.264 MP4 at
// outputPath. The encode writes to a temporary sibling first and renames on
// success so a failed run never leaves a partial artifact at outputPath.
func (c *CLI) Encode(ctx context.Context, framesDir string, fps int, outputPath string) error {
	if strings.TrimSpace(framesDir) == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "encode", "frames directory required", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "encode", "output path required", nil)
	}
	if fps <= 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "encode", "fps must be positive", nil)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tmpOutput := outputPath + ".tmp" + filepath.Ext(outputPath)
	defer os.Remove(tmpOutput)

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(fps),
		"-i", filepath.Join(framesDir, framePattern),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "fast",
		"-crf", "23",
		tmpOutput,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrEncodingFailed, "ffmpeg", "encode", "encode timed out or was canceled", ctx.Err())
		}
		detail := stderrTail(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return services.Wrap(services.ErrEncodingFailed, "ffmpeg", "encode", "ffmpeg exited with an error", err)
	}

	if err := os.Rename(tmpOutput, outputPath); err != nil {
		return services.Wrap(services.ErrEncodingFailed, "ffmpeg", "encode", "move encoded video into place", err)
	}
	return nil
}

// stderrTail keeps the last few lines of ffmpeg output, where the actionable
// error message lives.
func stderrTail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	tail := strings.TrimSpace(strings.Join(lines, " | "))
	if tail == "" {
		return ""
	}
	return tail
}

var _ Client = (*CLI)(nil)

// FramePath returns the on-disk path of one numbered frame.
func FramePath(framesDir string, index int) string {
	return filepath.Join(framesDir, fmt.Sprintf(framePattern, index))
}

var errNoFrames = errors.New("no frames rendered")

// CountFrames verifies framesDir holds a contiguous frame sequence starting
// at zero and returns its length.
func CountFrames(framesDir string) (int, error) {
	count := 0
	for {
		if _, err := os.Stat(FramePath(framesDir, count)); err != nil {
			break
		}
		count++
	}
	if count == 0 {
		return 0, errNoFrames
	}
	return count, nil
}
