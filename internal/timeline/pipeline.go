package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"orrery/internal/config"
	"orrery/internal/deps"
	"orrery/internal/ffmpeg"
	"orrery/internal/logging"
	"orrery/internal/render"
	"orrery/internal/services"
	"orrery/internal/solar"
	"orrery/internal/staging"
	"orrery/internal/store"
)

// Generator builds timeline videos and share stills from a system's snapshot
// history.
type Generator struct {
	cfg      *config.Config
	store    *store.Store
	solar    *solar.Service
	renderer render.FrameRenderer
	encoder  ffmpeg.Client
	logger   *slog.Logger
}

// NewGenerator constructs a Generator.
func NewGenerator(cfg *config.Config, st *store.Store, svc *solar.Service, renderer render.FrameRenderer, encoder ffmpeg.Client, logger *slog.Logger) *Generator {
	return &Generator{
		cfg:      cfg,
		store:    st,
		solar:    svc,
		renderer: renderer,
		encoder:  encoder,
		logger:   logging.NewComponentLogger(logger, "timeline"),
	}
}

// GenerateVideo renders every snapshot of the user's history into a frame
// sequence and encodes it into an MP4. The run is tracked as a render job so
// progress can be observed by polling; the scratch directory is reclaimed on
// every exit path and a failed run never leaves a partial artifact.
func (g *Generator) GenerateVideo(ctx context.Context, userID string) (*store.RenderJob, error) {
	system, err := g.solar.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	keyframes, err := g.loadKeyframes(ctx, system.ID)
	if err != nil {
		return nil, err
	}
	if err := deps.CheckFFmpeg(g.cfg); err != nil {
		return nil, err
	}

	job, err := g.store.NewRenderJob(ctx, system.ID, store.JobKindVideo)
	if err != nil {
		return nil, err
	}

	outputPath, err := g.runVideo(ctx, job, system.ID, keyframes)
	if err != nil {
		return job, g.failJob(ctx, job, err)
	}

	job.Status = store.JobCompleted
	job.ProgressPercent = 100
	job.ProgressMessage = "video ready"
	job.OutputPath = outputPath
	g.persistJob(ctx, job)
	g.logger.Info("video generated",
		logging.String("output", outputPath),
		logging.Int64("job_id", job.ID))
	return job, nil
}

func (g *Generator) runVideo(ctx context.Context, job *store.RenderJob, systemID string, keyframes []keyframe) (string, error) {
	ws, err := staging.Acquire(g.cfg, "video")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			g.logger.Warn("scratch cleanup failed", logging.Error(err))
		}
	}()

	holdFrames := g.cfg.HoldFrames()
	transitionFrames := g.cfg.Video.TransitionFrames
	plan := buildPlan(keyframes, holdFrames, transitionFrames)
	total := totalFrameCount(len(keyframes), holdFrames, transitionFrames)

	g.setStage(ctx, job, store.JobRendering, fmt.Sprintf("rendering %d frames", total))
	if err := g.renderFrames(ctx, job, ws.Dir, plan, total); err != nil {
		return "", err
	}

	rendered, err := ffmpeg.CountFrames(ws.Dir)
	if err != nil {
		return "", services.Wrap(services.ErrEncodingFailed, "timeline", "count frames", "", err)
	}
	if rendered != total {
		return "", services.Wrap(services.ErrEncodingFailed, "timeline", "count frames",
			fmt.Sprintf("frame sequence incomplete: have %d of %d", rendered, total), nil)
	}

	g.setStage(ctx, job, store.JobEncoding, "encoding video")
	outputPath, err := g.videoOutputPath(systemID)
	if err != nil {
		return "", err
	}
	if err := g.encoder.Encode(ctx, ws.Dir, g.cfg.Video.FPS, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// renderFrames renders the plan across a bounded worker pool. Each frame is a
// pure function of its document, so order of execution does not matter; the
// numbered filenames restore the sequence for the encoder.
func (g *Generator) renderFrames(ctx context.Context, job *store.RenderJob, dir string, plan []frame, total int) error {
	workers := g.cfg.Video.RenderWorkers
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan frame)
	errs := make(chan error, workers)
	var done atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range frames {
				img, err := g.renderer.RenderFrame(f.Doc, f.Index, total, f.Summary)
				if err != nil {
					errs <- fmt.Errorf("render frame %d: %w", f.Index, err)
					cancel()
					return
				}
				if err := render.WritePNG(ffmpeg.FramePath(dir, f.Index), img); err != nil {
					errs <- services.Wrap(services.ErrEncodingFailed, "timeline", "write frame",
						fmt.Sprintf("frame %d", f.Index), err)
					cancel()
					return
				}
				g.noteProgress(ctx, job, int(done.Add(1)), total)
			}
		}()
	}

feed:
	for _, f := range plan {
		select {
		case frames <- f:
		case <-ctx.Done():
			break feed
		}
	}
	close(frames)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return err
	}
	return ctx.Err()
}

// noteProgress persists render progress roughly every tenth of the run.
// Rendering owns the 0-90 band; encoding takes the rest.
func (g *Generator) noteProgress(ctx context.Context, job *store.RenderJob, completed, total int) {
	step := total / 10
	if step == 0 {
		step = 1
	}
	if completed%step != 0 && completed != total {
		return
	}
	copy := *job
	copy.ProgressPercent = float64(completed) / float64(total) * 90
	copy.ProgressMessage = fmt.Sprintf("rendered %d/%d frames", completed, total)
	if err := g.store.UpdateRenderJob(ctx, &copy); err != nil {
		g.logger.Warn("failed to persist render progress", logging.Error(err))
	}
}

func (g *Generator) loadKeyframes(ctx context.Context, systemID string) ([]keyframe, error) {
	snapshots, err := g.store.ListAllSnapshots(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if len(snapshots) < 2 {
		return nil, services.Wrap(services.ErrInsufficientHistory, "timeline", "load snapshots",
			fmt.Sprintf("need at least 2 snapshots to generate a video, have %d", len(snapshots)), nil)
	}

	keyframes := make([]keyframe, 0, len(snapshots))
	for i := range snapshots {
		doc, err := solar.DecodeState(&snapshots[i])
		if err != nil {
			return nil, err
		}
		keyframes = append(keyframes, keyframe{Doc: doc, Summary: snapshots[i].ChangeSummary})
	}
	return keyframes, nil
}

func (g *Generator) videoOutputPath(systemID string) (string, error) {
	dir := filepath.Join(g.cfg.Paths.GeneratedDir, "videos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create video output directory: %w", err)
	}
	name := fmt.Sprintf("timeline_%s_%d.mp4", systemID, time.Now().Unix())
	return filepath.Join(dir, name), nil
}

func (g *Generator) setStage(ctx context.Context, job *store.RenderJob, status store.JobStatus, message string) {
	job.Status = status
	job.ProgressMessage = message
	g.persistJob(ctx, job)
}

func (g *Generator) failJob(ctx context.Context, job *store.RenderJob, err error) error {
	job.Status = store.JobFailed
	job.ErrorKind = services.Kind(err)
	job.ErrorMessage = err.Error()
	g.persistJob(ctx, job)
	g.logger.Error("render run failed",
		logging.Int64("job_id", job.ID),
		logging.String("kind", job.ErrorKind),
		logging.Error(err))
	return err
}

func (g *Generator) persistJob(ctx context.Context, job *store.RenderJob) {
	if err := g.store.UpdateRenderJob(ctx, job); err != nil {
		g.logger.Warn("failed to persist job state", logging.Error(err))
	}
}

// Job returns one render job for polling. Unknown ids, and jobs belonging to
// another user's system, fail with NotFound.
func (g *Generator) Job(ctx context.Context, userID string, id int64) (*store.RenderJob, error) {
	job, err := g.store.GetRenderJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "timeline", "get job", fmt.Sprintf("job %d", id), nil)
	}
	system, err := g.store.GetSolarSystem(ctx, job.SolarSystemID)
	if err != nil {
		return nil, err
	}
	if system == nil || system.UserID != userID {
		return nil, services.Wrap(services.ErrNotFound, "timeline", "get job", fmt.Sprintf("job %d", id), nil)
	}
	return job, nil
}

// Jobs lists a user's recent render jobs, newest first.
func (g *Generator) Jobs(ctx context.Context, userID string, limit int) ([]store.RenderJob, error) {
	system, err := g.solar.System(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.store.ListRenderJobs(ctx, system.ID, limit)
}
