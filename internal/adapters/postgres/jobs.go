package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"sentinel/internal/ports"
)

// JobRepository for background analysis jobs.

func (db *DB) Enqueue(ctx context.Context, characterID int64, requestedBy string) (string, error) {
	var jobID string
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO analysis_jobs (character_id, requested_by, status)
		VALUES ($1, $2, 'queued')
		RETURNING id
	`, characterID, requestedBy).Scan(&jobID)
	return jobID, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it
// running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.AnalysisJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		SELECT id, character_id, COALESCE(requested_by, '') FROM analysis_jobs
		WHERE status = 'queued'
		ORDER BY queued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&job.ID, &job.CharacterID, &job.RequestedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE analysis_jobs SET status = 'running', started_at = now(), attempts = attempts + 1 WHERE id = $1
	`, job.ID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string, reportID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE analysis_jobs SET status = 'completed', report_id = $2, finished_at = now() WHERE id = $1
	`, jobID, reportID)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE analysis_jobs SET status = 'failed', failure_reason = $2, finished_at = now() WHERE id = $1
	`, jobID, reason)
	return err
}
