package timeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"orrery/internal/fileutil"
	"orrery/internal/logging"
	"orrery/internal/render"
	"orrery/internal/staging"
	"orrery/internal/state"
	"orrery/internal/store"
)

// GenerateStill renders the current live state as a single share image. It
// is the degenerate pipeline: one frame, no transitions, no encoder.
func (g *Generator) GenerateStill(ctx context.Context, userID string) (*store.RenderJob, error) {
	system, err := g.solar.System(ctx, userID)
	if err != nil {
		return nil, err
	}
	doc, err := g.solar.CurrentState(ctx, userID)
	if err != nil {
		return nil, err
	}

	job, err := g.store.NewRenderJob(ctx, system.ID, store.JobKindImage)
	if err != nil {
		return nil, err
	}

	outputPath, err := g.runStill(ctx, system.ID, doc)
	if err != nil {
		return job, g.failJob(ctx, job, err)
	}

	job.Status = store.JobCompleted
	job.ProgressPercent = 100
	job.ProgressMessage = "image ready"
	job.OutputPath = outputPath
	g.persistJob(ctx, job)
	g.logger.Info("still generated",
		logging.String("output", outputPath),
		logging.Int64("job_id", job.ID))
	return job, nil
}

func (g *Generator) runStill(ctx context.Context, systemID string, doc state.Document) (string, error) {
	ws, err := staging.Acquire(g.cfg, "image")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			g.logger.Warn("scratch cleanup failed", logging.Error(err))
		}
	}()

	img, err := g.renderer.RenderStill(doc)
	if err != nil {
		return "", fmt.Errorf("render still: %w", err)
	}

	scratch := filepath.Join(ws.Dir, "still.png")
	if err := render.WritePNG(scratch, img); err != nil {
		return "", err
	}

	dir := filepath.Join(g.cfg.Paths.GeneratedDir, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image output directory: %w", err)
	}
	outputPath := filepath.Join(dir, fmt.Sprintf("solar_system_%s_%d.png", systemID, time.Now().Unix()))
	if err := fileutil.MoveFile(scratch, outputPath); err != nil {
		return "", fmt.Errorf("move still into place: %w", err)
	}
	return outputPath, nil
}
