package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const snapshotColumns = "seq, id, solar_system_id, full_state, change_type, change_summary, created_at"

// InsertSnapshot appends a snapshot record. Snapshots have no update or
// delete operations; they are removed only by cascading deletion of the
// owning system.
func (o ops) InsertSnapshot(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return errors.New("snapshot is nil")
	}
	if !snapshot.ChangeType.Valid() {
		return fmt.Errorf("unknown change type %q", snapshot.ChangeType)
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	res, err := o.q.ExecContext(
		ensureContext(ctx),
		`INSERT INTO snapshots (id, solar_system_id, full_state, change_type, change_summary, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.SolarSystemID,
		string(snapshot.FullState),
		string(snapshot.ChangeType),
		snapshot.ChangeSummary,
		timestamp(snapshot.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot seq: %w", err)
	}
	snapshot.Seq = seq
	return nil
}

// GetSnapshot fetches one snapshot scoped to a system. Returns nil when the
// id does not exist or belongs to a different system.
func (o ops) GetSnapshot(ctx context.Context, systemID, snapshotID string) (*Snapshot, error) {
	row := o.q.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ? AND solar_system_id = ?`,
		snapshotID,
		systemID,
	)
	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snapshot, nil
}

// ListSnapshots returns a metadata page ordered oldest-first plus the total
// count independent of the pagination window. page is 1-based.
func (o ops) ListSnapshots(ctx context.Context, systemID string, page, perPage int) ([]SnapshotSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	ctx = ensureContext(ctx)

	var total int
	if err := o.q.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM snapshots WHERE solar_system_id = ?`,
		systemID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshots: %w", err)
	}

	rows, err := o.q.QueryContext(
		ctx,
		`SELECT id, change_type, change_summary, created_at FROM snapshots
         WHERE solar_system_id = ?
         ORDER BY created_at ASC, seq ASC
         LIMIT ? OFFSET ?`,
		systemID,
		perPage,
		(page-1)*perPage,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var summaries []SnapshotSummary
	for rows.Next() {
		var (
			summary    SnapshotSummary
			changeType string
			createdAt  string
		)
		if err := rows.Scan(&summary.ID, &changeType, &summary.ChangeSummary, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan snapshot summary: %w", err)
		}
		summary.ChangeType = ChangeType(changeType)
		summary.CreatedAt = parseTimestamp(createdAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate snapshots: %w", err)
	}
	return summaries, total, nil
}

// ListAllSnapshots returns every snapshot of a system oldest-first with full
// payloads, the order the timeline pipeline consumes.
func (o ops) ListAllSnapshots(ctx context.Context, systemID string) ([]Snapshot, error) {
	rows, err := o.q.QueryContext(
		ensureContext(ctx),
		`SELECT `+snapshotColumns+` FROM snapshots
         WHERE solar_system_id = ?
         ORDER BY created_at ASC, seq ASC`,
		systemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list all snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// CountSnapshots returns the number of snapshots recorded for a system.
func (o ops) CountSnapshots(ctx context.Context, systemID string) (int, error) {
	var total int
	err := o.q.QueryRowContext(
		ensureContext(ctx),
		`SELECT COUNT(1) FROM snapshots WHERE solar_system_id = ?`,
		systemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return total, nil
}

// SnapshotActivity returns per-day snapshot counts since the cutoff,
// oldest day first.
func (o ops) SnapshotActivity(ctx context.Context, systemID string, since time.Time) ([]ActivityBucket, error) {
	rows, err := o.q.QueryContext(
		ensureContext(ctx),
		`SELECT substr(created_at, 1, 10) AS day, COUNT(1)
         FROM snapshots
         WHERE solar_system_id = ? AND created_at >= ?
         GROUP BY day
         ORDER BY day ASC`,
		systemID,
		timestamp(since),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot activity: %w", err)
	}
	defer rows.Close()

	var buckets []ActivityBucket
	for rows.Next() {
		var bucket ActivityBucket
		if err := rows.Scan(&bucket.Date, &bucket.ChangeCount); err != nil {
			return nil, fmt.Errorf("scan activity bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return buckets, nil
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		snapshot   Snapshot
		fullState  string
		changeType string
		createdAt  string
	)
	if err := row.Scan(
		&snapshot.Seq,
		&snapshot.ID,
		&snapshot.SolarSystemID,
		&fullState,
		&changeType,
		&snapshot.ChangeSummary,
		&createdAt,
	); err != nil {
		return nil, err
	}
	snapshot.FullState = []byte(fullState)
	snapshot.ChangeType = ChangeType(changeType)
	snapshot.CreatedAt = parseTimestamp(createdAt)
	return &snapshot, nil
}
