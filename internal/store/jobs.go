package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const jobColumns = `id, solar_system_id, kind, status, progress_percent, progress_message,
    output_path, error_kind, error_message, created_at, updated_at`

// NewRenderJob inserts a pending render job and returns the stored row.
func (o ops) NewRenderJob(ctx context.Context, systemID string, kind JobKind) (*RenderJob, error) {
	now := time.Now().UTC()
	res, err := o.q.ExecContext(
		ensureContext(ctx),
		`INSERT INTO render_jobs (solar_system_id, kind, status, progress_percent, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)`,
		systemID,
		string(kind),
		string(JobPending),
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert render job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("render job id: %w", err)
	}
	return o.GetRenderJob(ctx, id)
}

// GetRenderJob fetches a job by identifier. Returns nil when absent.
func (o ops) GetRenderJob(ctx context.Context, id int64) (*RenderJob, error) {
	row := o.q.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM render_jobs WHERE id = ?`, id)
	job, err := scanRenderJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get render job: %w", err)
	}
	return job, nil
}

// UpdateRenderJob persists changes to an existing job row.
func (o ops) UpdateRenderJob(ctx context.Context, job *RenderJob) error {
	if job == nil {
		return errors.New("render job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	_, err := o.q.ExecContext(
		ensureContext(ctx),
		`UPDATE render_jobs
         SET status = ?, progress_percent = ?, progress_message = ?, output_path = ?,
             error_kind = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		string(job.Status),
		job.ProgressPercent,
		nullableString(job.ProgressMessage),
		nullableString(job.OutputPath),
		nullableString(job.ErrorKind),
		nullableString(job.ErrorMessage),
		timestamp(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update render job: %w", err)
	}
	return nil
}

// ListRenderJobs returns the most recent jobs for a system, newest first.
func (o ops) ListRenderJobs(ctx context.Context, systemID string, limit int) ([]RenderJob, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := o.q.QueryContext(
		ensureContext(ctx),
		`SELECT `+jobColumns+` FROM render_jobs
         WHERE solar_system_id = ?
         ORDER BY id DESC LIMIT ?`,
		systemID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list render jobs: %w", err)
	}
	defer rows.Close()

	var jobs []RenderJob
	for rows.Next() {
		job, err := scanRenderJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan render job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate render jobs: %w", err)
	}
	return jobs, nil
}

func scanRenderJob(row rowScanner) (*RenderJob, error) {
	var (
		job             RenderJob
		kind            string
		status          string
		progressMessage sql.NullString
		outputPath      sql.NullString
		errorKind       sql.NullString
		errorMessage    sql.NullString
		createdAt       string
		updatedAt       string
	)
	if err := row.Scan(
		&job.ID,
		&job.SolarSystemID,
		&kind,
		&status,
		&job.ProgressPercent,
		&progressMessage,
		&outputPath,
		&errorKind,
		&errorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	job.Kind = JobKind(kind)
	job.Status = JobStatus(status)
	job.ProgressMessage = progressMessage.String
	job.OutputPath = outputPath.String
	job.ErrorKind = errorKind.String
	job.ErrorMessage = errorMessage.String
	job.CreatedAt = parseTimestamp(createdAt)
	job.UpdatedAt = parseTimestamp(updatedAt)
	return &job, nil
}
