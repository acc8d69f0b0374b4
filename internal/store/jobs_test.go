package store_test

import (
	"context"
	"testing"

	"orrery/internal/store"
	"orrery/internal/testsupport"
)

func TestRenderJobLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, system := testsupport.SeedSystem(t, st, "Riya")

	ctx := context.Background()
	job, err := st.NewRenderJob(ctx, system.ID, store.JobKindVideo)
	if err != nil {
		t.Fatalf("NewRenderJob: %v", err)
	}
	if job.Status != store.JobPending {
		t.Fatalf("status = %q, want pending", job.Status)
	}

	job.Status = store.JobEncoding
	job.ProgressPercent = 80
	job.ProgressMessage = "encoding 120 frames"
	if err := st.UpdateRenderJob(ctx, job); err != nil {
		t.Fatalf("UpdateRenderJob: %v", err)
	}

	fetched, err := st.GetRenderJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetRenderJob: %v", err)
	}
	if fetched.Status != store.JobEncoding || fetched.ProgressPercent != 80 {
		t.Fatalf("unexpected job: %#v", fetched)
	}

	job.Status = store.JobFailed
	job.ErrorKind = "encoding_failed"
	job.ErrorMessage = "ffmpeg exited with status 1"
	if err := st.UpdateRenderJob(ctx, job); err != nil {
		t.Fatalf("UpdateRenderJob: %v", err)
	}

	jobs, err := st.ListRenderJobs(ctx, system.ID, 10)
	if err != nil {
		t.Fatalf("ListRenderJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ErrorKind != "encoding_failed" {
		t.Fatalf("unexpected listing: %#v", jobs)
	}
}

func TestGetRenderJobMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	job, err := st.GetRenderJob(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetRenderJob: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job, got %#v", job)
	}
}
