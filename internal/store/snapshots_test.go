package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"orrery/internal/store"
	"orrery/internal/testsupport"
)

func appendSnapshot(t *testing.T, st *store.Store, systemID string, i int) string {
	t.Helper()
	snapshot := &store.Snapshot{
		ID:            uuid.NewString(),
		SolarSystemID: systemID,
		FullState:     []byte(fmt.Sprintf(`{"total_active_people":%d}`, i)),
		ChangeType:    store.ChangePersonAdded,
		ChangeSummary: fmt.Sprintf("Added person %d", i),
	}
	if err := st.InsertSnapshot(context.Background(), snapshot); err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}
	return snapshot.ID
}

func TestInsertSnapshotRejectsUnknownChangeType(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, system := testsupport.SeedSystem(t, st, "Riya")

	err := st.InsertSnapshot(context.Background(), &store.Snapshot{
		ID:            uuid.NewString(),
		SolarSystemID: system.ID,
		FullState:     []byte(`{}`),
		ChangeType:    store.ChangeType("theme_party"),
	})
	if err == nil {
		t.Fatal("expected rejection of unknown change type")
	}
}

func TestListSnapshotsOldestFirstWithStableTotal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, system := testsupport.SeedSystem(t, st, "Riya")

	ctx := context.Background()
	const n = 7
	for i := 0; i < n; i++ {
		appendSnapshot(t, st, system.ID, i)
	}

	var collected []store.SnapshotSummary
	perPage := 3
	for page := 1; ; page++ {
		summaries, total, err := st.ListSnapshots(ctx, system.ID, page, perPage)
		if err != nil {
			t.Fatalf("ListSnapshots page %d: %v", page, err)
		}
		if total != n {
			t.Fatalf("total = %d on page %d, want %d", total, page, n)
		}
		if len(summaries) == 0 {
			break
		}
		collected = append(collected, summaries...)
	}
	if len(collected) != n {
		t.Fatalf("traversal yielded %d summaries, want %d", len(collected), n)
	}

	var prev time.Time
	for i, summary := range collected {
		if summary.CreatedAt.Before(prev) {
			t.Fatalf("timestamps decrease at index %d", i)
		}
		prev = summary.CreatedAt
		want := fmt.Sprintf("Added person %d", i)
		if summary.ChangeSummary != want {
			t.Fatalf("summary[%d] = %q, want %q (not oldest-first)", i, summary.ChangeSummary, want)
		}
	}
}

func TestGetSnapshotScopedToSystem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, systemA := testsupport.SeedSystem(t, st, "Riya")
	_, systemB := testsupport.SeedSystem(t, st, "Dev")

	ctx := context.Background()
	id := appendSnapshot(t, st, systemA.ID, 0)

	snapshot, err := st.GetSnapshot(ctx, systemA.ID, id)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if snapshot == nil || snapshot.ID != id {
		t.Fatalf("expected snapshot, got %#v", snapshot)
	}

	// Same id through the wrong owner must not resolve.
	snapshot, err = st.GetSnapshot(ctx, systemB.ID, id)
	if err != nil {
		t.Fatalf("GetSnapshot cross-owner: %v", err)
	}
	if snapshot != nil {
		t.Fatal("snapshot leaked across owners")
	}
}

func TestListAllSnapshotsTieBrokenByInsertionOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, system := testsupport.SeedSystem(t, st, "Riya")

	ctx := context.Background()
	// Force identical creation timestamps.
	at := time.Now().UTC().Truncate(time.Second)
	var ids []string
	for i := 0; i < 3; i++ {
		snapshot := &store.Snapshot{
			ID:            uuid.NewString(),
			SolarSystemID: system.ID,
			FullState:     []byte(`{}`),
			ChangeType:    store.ChangePersonMoved,
			ChangeSummary: "Moved",
			CreatedAt:     at,
		}
		if err := st.InsertSnapshot(ctx, snapshot); err != nil {
			t.Fatalf("InsertSnapshot: %v", err)
		}
		ids = append(ids, snapshot.ID)
	}

	snapshots, err := st.ListAllSnapshots(ctx, system.ID)
	if err != nil {
		t.Fatalf("ListAllSnapshots: %v", err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("len = %d, want 3", len(snapshots))
	}
	for i, snapshot := range snapshots {
		if snapshot.ID != ids[i] {
			t.Fatalf("insertion order not preserved at %d", i)
		}
	}
}

func TestSnapshotActivityBucketsByDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, system := testsupport.SeedSystem(t, st, "Riya")

	ctx := context.Background()
	now := time.Now().UTC()
	days := []time.Time{now.AddDate(0, 0, -2), now.AddDate(0, 0, -2), now}
	for _, day := range days {
		snapshot := &store.Snapshot{
			ID:            uuid.NewString(),
			SolarSystemID: system.ID,
			FullState:     []byte(`{}`),
			ChangeType:    store.ChangePersonAdded,
			ChangeSummary: "Added",
			CreatedAt:     day,
		}
		if err := st.InsertSnapshot(ctx, snapshot); err != nil {
			t.Fatalf("InsertSnapshot: %v", err)
		}
	}

	buckets, err := st.SnapshotActivity(ctx, system.ID, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("SnapshotActivity: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2: %+v", len(buckets), buckets)
	}
	if buckets[0].ChangeCount != 2 || buckets[1].ChangeCount != 1 {
		t.Fatalf("unexpected counts: %+v", buckets)
	}
}
