package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"ideaspark/internal/journal"
)

// Queue is the job table as seen by a worker.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Job, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error
}

// Journals is the read side the worker needs to check a reminder is still due.
type Journals interface {
	Get(ctx context.Context, key journal.Key) (*journal.Journal, error)
}

type Worker struct {
	ID       string
	Queue    Queue
	Journals Journals
	Log      *zap.Logger
	Interval time.Duration
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Queue.Claim(ctx, w.ID)
			if err != nil {
				w.logger().Warn("worker claim error", zap.Error(err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeStreakReminder:
		w.handleReminder(ctx, job)
	default:
		_ = w.Queue.MarkFailed(ctx, job.ID, "unknown job type")
	}
}

func (w *Worker) handleReminder(ctx context.Context, job *Job) {
	var p reminderPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Queue.MarkFailed(ctx, job.ID, "bad payload")
		return
	}
	key, err := journal.ParseKey(job.JournalKey)
	if err != nil {
		_ = w.Queue.MarkFailed(ctx, job.ID, "bad journal key")
		return
	}

	j, err := w.Journals.Get(ctx, key)
	if err != nil {
		if errors.Is(err, journal.ErrRecordNotFound) {
			_ = w.Queue.MarkDone(ctx, job.ID)
			return
		}
		w.retry(ctx, job, "journal read error")
		return
	}

	// a newer idea moved the window; that log scheduled its own reminder
	if j.LastLogged != p.LastLogged {
		_ = w.Queue.MarkDone(ctx, job.ID)
		return
	}

	w.logger().Info("streak reminder",
		zap.String("owner", j.Owner.String()),
		zap.String("key", job.JournalKey),
		zap.Uint64("streak", p.Streak),
		zap.Time("expires_at", time.Unix(j.LastLogged, 0).Add(journal.StreakWindow)),
	)
	_ = w.Queue.MarkDone(ctx, job.ID)
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Queue.MarkFailed(ctx, job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Queue.RetryLater(ctx, job.ID, attempts, next, errMsg)
}
