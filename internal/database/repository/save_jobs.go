package repository

import (
	"context"
	"database/sql"
	"time"
)

// SaveJobRepo handles the queued-save jobs the background worker drains.
type SaveJobRepo struct {
	db *sql.DB
}

func NewSaveJobRepo(db *sql.DB) *SaveJobRepo { return &SaveJobRepo{db: db} }

func (r *SaveJobRepo) Enqueue(ctx context.Context, j SaveJob) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO save_jobs(id, order_id, payload, status, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, j.ID, j.OrderID, string(j.Payload), JobQueued, j.CreatedAt)
	return err
}

// NextQueued returns the oldest queued job, or nil when the queue is empty.
func (r *SaveJobRepo) NextQueued(ctx context.Context) (*SaveJob, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, order_id, payload, status, error, created_at, updated_at
	FROM save_jobs WHERE status = ? ORDER BY created_at, id LIMIT 1`, JobQueued)
	var j SaveJob
	var payload string
	err := row.Scan(&j.ID, &j.OrderID, &payload, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.Payload = []byte(payload)
	return &j, nil
}

func (r *SaveJobRepo) MarkProcessing(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, JobProcessing, nil)
}

func (r *SaveJobRepo) MarkCompleted(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, JobCompleted, nil)
}

func (r *SaveJobRepo) MarkFailed(ctx context.Context, id, msg string) error {
	return r.setStatus(ctx, id, JobFailed, &msg)
}

func (r *SaveJobRepo) setStatus(ctx context.Context, id, status string, msg *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE save_jobs SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, msg, id)
	return err
}

// CountUnfinished counts jobs for the order enqueued at or after since that
// have not reached a terminal status. Zero means the save is complete.
func (r *SaveJobRepo) CountUnfinished(ctx context.Context, orderID string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM save_jobs
	WHERE order_id = ? AND created_at >= ? AND status IN (?, ?)`,
		orderID, since, JobQueued, JobProcessing)
	var n int
	err := row.Scan(&n)
	return n, err
}

// FirstFailureSince returns the earliest failed job for the order enqueued at
// or after since, or nil when none failed.
func (r *SaveJobRepo) FirstFailureSince(ctx context.Context, orderID string, since time.Time) (*SaveJob, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, order_id, payload, status, error, created_at, updated_at
	FROM save_jobs
	WHERE order_id = ? AND created_at >= ? AND status = ?
	ORDER BY created_at, id LIMIT 1`, orderID, since, JobFailed)
	var j SaveJob
	var payload string
	err := row.Scan(&j.ID, &j.OrderID, &payload, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.Payload = []byte(payload)
	return &j, nil
}
