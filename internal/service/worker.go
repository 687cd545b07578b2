package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"orderdesk/internal/database"
	"orderdesk/internal/database/repository"
)

// SaveWorker drains queued save jobs. The editor never waits on it directly;
// it observes progress through OrderEntryService.SaveStatus.
type SaveWorker struct {
	DB    *sql.DB
	Jobs  *repository.SaveJobRepo
	Items *repository.OrderItemRepo
}

// Run processes jobs until ctx is cancelled, sleeping for interval whenever
// the queue is empty.
func (w *SaveWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for {
			processed, err := w.ProcessOnce(ctx)
			if err != nil || !processed {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessOnce takes the oldest queued job and applies its changes in one
// transaction. A job whose payload cannot be applied is marked failed with
// the reason; the worker itself keeps going. Returns false when the queue
// was empty.
func (w *SaveWorker) ProcessOnce(ctx context.Context) (bool, error) {
	job, err := w.Jobs.NextQueued(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	if err := w.Jobs.MarkProcessing(ctx, job.ID); err != nil {
		return false, err
	}

	if err := w.apply(ctx, job); err != nil {
		if markErr := w.Jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			return false, markErr
		}
		return true, nil
	}
	if err := w.Jobs.MarkCompleted(ctx, job.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (w *SaveWorker) apply(ctx context.Context, job *repository.SaveJob) error {
	var payload savePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return err
	}
	return database.WithTx(w.DB, func(tx *sql.Tx) error {
		return applyChanges(ctx, w.Items, tx, payload.Upserts, payload.Deletes)
	})
}
