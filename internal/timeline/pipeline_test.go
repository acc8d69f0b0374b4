package timeline

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"orrery/internal/config"
	"orrery/internal/ffmpeg"
	"orrery/internal/logging"
	"orrery/internal/services"
	"orrery/internal/solar"
	"orrery/internal/state"
	"orrery/internal/store"
	"orrery/internal/testsupport"
)

type renderCall struct {
	Index   int
	Total   int
	Summary string
}

// fakeRenderer emits tiny frames and records every call.
type fakeRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (f *fakeRenderer) RenderStill(doc state.Document) (image.Image, error) {
	return f.RenderFrame(doc, 0, 0, "")
}

func (f *fakeRenderer) RenderFrame(doc state.Document, frameIndex, totalFrames int, changeSummary string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, renderCall{Index: frameIndex, Total: totalFrames, Summary: changeSummary})
	f.mu.Unlock()
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

// fakeEncoder validates the frame sequence and writes a marker artifact.
type fakeEncoder struct {
	mu          sync.Mutex
	invocations int
	frames      int
	fail        bool
}

func (f *fakeEncoder) Encode(ctx context.Context, framesDir string, fps int, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invocations++
	count, err := ffmpeg.CountFrames(framesDir)
	if err != nil {
		return err
	}
	f.frames = count
	if f.fail {
		return services.Wrap(services.ErrEncodingFailed, "ffmpeg", "encode", "stub failure", nil)
	}
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

type fixture struct {
	cfg      *config.Config
	svc      *solar.Service
	gen      *Generator
	renderer *fakeRenderer
	encoder  *fakeEncoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	// Two hold frames and three transition frames keep runs tiny.
	cfg.Video.FPS = 10
	cfg.Video.HoldSeconds = 0.2
	cfg.Video.TransitionFrames = 3

	// The preflight check needs a resolvable binary.
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	cfg.Video.FFmpegBinary = stub

	st := testsupport.MustOpenStore(t, cfg)
	svc := solar.NewService(st, logging.NewNop())
	renderer := &fakeRenderer{}
	encoder := &fakeEncoder{}
	gen := NewGenerator(cfg, st, svc, renderer, encoder, logging.NewNop())
	return &fixture{cfg: cfg, svc: svc, gen: gen, renderer: renderer, encoder: encoder}
}

// seedHistory creates a user with one extra snapshot beyond the genesis one.
func seedHistory(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	user, _, err := f.svc.CreateUser(ctx, solar.NewUserParams{Name: "Ada"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := f.svc.AddPerson(ctx, user.ID, solar.NewPersonParams{
		Name: "Riya", XPosition: 0.3, YPosition: -0.2,
	}); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	return user.ID
}

func stagingEntries(t *testing.T, cfg *config.Config) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	dirs := entries[:0]
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry)
		}
	}
	return dirs
}

func TestGenerateVideo(t *testing.T) {
	f := newFixture(t)
	userID := seedHistory(t, f)

	job, err := f.gen.GenerateVideo(context.Background(), userID)
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}

	// Two snapshots, hold=2, transition=3.
	const wantFrames = 2*2 + 1*3
	if f.encoder.invocations != 1 {
		t.Errorf("encoder invoked %d times, want 1", f.encoder.invocations)
	}
	if f.encoder.frames != wantFrames {
		t.Errorf("encoder saw %d frames, want %d", f.encoder.frames, wantFrames)
	}

	if job.Status != store.JobCompleted || job.ProgressPercent != 100 {
		t.Errorf("job = %+v, want completed at 100%%", job)
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		t.Errorf("output artifact missing: %v", err)
	}
	if got := len(stagingEntries(t, f.cfg)); got != 0 {
		t.Errorf("%d scratch directories left after success", got)
	}
}

func TestGenerateVideoFramePlanObserved(t *testing.T) {
	f := newFixture(t)
	userID := seedHistory(t, f)

	if _, err := f.gen.GenerateVideo(context.Background(), userID); err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}

	const total = 7
	calls := f.renderer.calls
	if len(calls) != total {
		t.Fatalf("rendered %d frames, want %d", len(calls), total)
	}

	seen := make(map[int]renderCall, len(calls))
	for _, call := range calls {
		if call.Total != total {
			t.Errorf("frame %d saw total %d, want %d", call.Index, call.Total, total)
		}
		if _, dup := seen[call.Index]; dup {
			t.Errorf("frame %d rendered twice", call.Index)
		}
		seen[call.Index] = call
	}
	for i := 0; i < total; i++ {
		if _, ok := seen[i]; !ok {
			t.Errorf("frame %d never rendered", i)
		}
	}

	// Only the first frame of each hold block carries a summary.
	for i := 0; i < total; i++ {
		summary := seen[i].Summary
		switch i {
		case 0:
			if summary != "Solar system created" {
				t.Errorf("frame 0 summary = %q", summary)
			}
		case 5:
			if summary != "Added Riya as Untagged" {
				t.Errorf("frame 5 summary = %q", summary)
			}
		default:
			if summary != "" {
				t.Errorf("frame %d has unexpected summary %q", i, summary)
			}
		}
	}
}

func TestGenerateVideoInsufficientHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _, err := f.svc.CreateUser(ctx, solar.NewUserParams{Name: "Ada"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Only the genesis snapshot exists.
	job, err := f.gen.GenerateVideo(ctx, user.ID)
	if !errors.Is(err, services.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
	if job != nil {
		t.Errorf("no job should be created for a rejected run, got %+v", job)
	}
	if f.encoder.invocations != 0 {
		t.Error("encoder invoked despite rejected run")
	}
}

func TestGenerateVideoEncoderFailure(t *testing.T) {
	f := newFixture(t)
	f.encoder.fail = true
	userID := seedHistory(t, f)

	job, err := f.gen.GenerateVideo(context.Background(), userID)
	if !errors.Is(err, services.ErrEncodingFailed) {
		t.Fatalf("expected encoding failure, got %v", err)
	}
	if job == nil {
		t.Fatal("failed run should still return its job")
	}
	if job.Status != store.JobFailed {
		t.Errorf("job status = %s, want failed", job.Status)
	}
	if job.ErrorKind != "encoding_failed" {
		t.Errorf("job error kind = %q", job.ErrorKind)
	}

	if got := len(stagingEntries(t, f.cfg)); got != 0 {
		t.Errorf("%d scratch directories left after failure", got)
	}
	videos := filepath.Join(f.cfg.Paths.GeneratedDir, "videos")
	if entries, err := os.ReadDir(videos); err == nil && len(entries) != 0 {
		t.Errorf("failed run left %d artifacts in %s", len(entries), videos)
	}
}

func TestFrameWriteFailureIsEncodingFailed(t *testing.T) {
	f := newFixture(t)
	userID := seedHistory(t, f)
	ctx := context.Background()

	system, err := f.svc.System(ctx, userID)
	if err != nil {
		t.Fatalf("System: %v", err)
	}
	keyframes, err := f.gen.loadKeyframes(ctx, system.ID)
	if err != nil {
		t.Fatalf("loadKeyframes: %v", err)
	}
	job, err := f.gen.store.NewRenderJob(ctx, system.ID, store.JobKindVideo)
	if err != nil {
		t.Fatalf("NewRenderJob: %v", err)
	}

	plan := buildPlan(keyframes, 2, 3)
	missing := filepath.Join(t.TempDir(), "missing")
	err = f.gen.renderFrames(ctx, job, missing, plan, len(plan))
	if !errors.Is(err, services.ErrEncodingFailed) {
		t.Fatalf("frame write failure = %v, want encoding failure", err)
	}
	if kind := services.Kind(err); kind != "encoding_failed" {
		t.Errorf("error kind = %q, want encoding_failed", kind)
	}
}

func TestGenerateVideoMissingFFmpeg(t *testing.T) {
	f := newFixture(t)
	f.cfg.Video.FFmpegBinary = "clearly-not-present-binary"
	userID := seedHistory(t, f)

	_, err := f.gen.GenerateVideo(context.Background(), userID)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGenerateStill(t *testing.T) {
	f := newFixture(t)
	userID := seedHistory(t, f)

	job, err := f.gen.GenerateStill(context.Background(), userID)
	if err != nil {
		t.Fatalf("GenerateStill: %v", err)
	}
	if job.Kind != store.JobKindImage || job.Status != store.JobCompleted {
		t.Errorf("job = %+v", job)
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		t.Errorf("still artifact missing: %v", err)
	}
	if f.encoder.invocations != 0 {
		t.Error("still generation must not invoke the encoder")
	}
	if got := len(stagingEntries(t, f.cfg)); got != 0 {
		t.Errorf("%d scratch directories left after still", got)
	}
}

func TestJobsListing(t *testing.T) {
	f := newFixture(t)
	userID := seedHistory(t, f)

	first, err := f.gen.GenerateVideo(context.Background(), userID)
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}
	if _, err := f.gen.GenerateStill(context.Background(), userID); err != nil {
		t.Fatalf("GenerateStill: %v", err)
	}

	jobs, err := f.gen.Jobs(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("listed %d jobs, want 2", len(jobs))
	}
	if jobs[0].Kind != store.JobKindImage {
		t.Errorf("newest job kind = %s, want image first", jobs[0].Kind)
	}

	got, err := f.gen.Job(context.Background(), userID, first.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if got == nil || got.Status != store.JobCompleted {
		t.Errorf("job lookup = %+v", got)
	}

	other, _, err := f.svc.CreateUser(context.Background(), solar.NewUserParams{Name: "Eve"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := f.gen.Job(context.Background(), other.ID, first.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("cross-owner job lookup: %v", err)
	}
	if _, err := f.gen.Job(context.Background(), userID, 9999); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown job lookup: %v", err)
	}
}
