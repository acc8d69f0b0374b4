// Package deps verifies the external binaries video generation shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"orrery/internal/config"
	"orrery/internal/services"
)

// Requirement names an external binary the application relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured setup needs. Only ffmpeg is
// required, and only for video generation.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Video.FFmpegBinary,
			Description: "stitches rendered frames into MP4 videos",
		},
	}
}

// Check evaluates the requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// CheckFFmpeg is the preflight gate for video generation. It fails fast so a
// render run never burns frames it cannot encode.
func CheckFFmpeg(cfg *config.Config) error {
	for _, status := range Check(Requirements(cfg)) {
		if status.Name != "FFmpeg" {
			continue
		}
		if !status.Available {
			return services.Wrap(services.ErrConfiguration, "deps", "check ffmpeg", status.Detail, nil)
		}
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "deps", "check ffmpeg", "ffmpeg requirement missing", nil)
}
