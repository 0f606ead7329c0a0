package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB
}

// ReplaceReminder drops pending reminders for the journal and schedules a new
// one, unless a pending reminder was already scheduled for a later log.
func (r *Repo) ReplaceReminder(ctx context.Context, owner uuid.UUID, journalKey string, p reminderPayload, runAt time.Time) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// one replacer per journal at a time, even when nothing is pending yet
		if err := tx.Exec(`select pg_advisory_xact_lock(hashtext(?))`, journalKey).Error; err != nil {
			return err
		}

		var pending []Job
		if err := tx.Where("journal_key = ? and type = ? and status = ?",
			journalKey, TypeStreakReminder, StatusPending).
			Find(&pending).Error; err != nil {
			return err
		}
		if superseded(p, pending) {
			return nil
		}

		if err := tx.Exec(`
delete from jobs
where journal_key = ? and type = ? and status = ?`,
			journalKey, TypeStreakReminder, StatusPending).Error; err != nil {
			return err
		}
		j := Job{
			Owner:      owner,
			JournalKey: journalKey,
			Type:       TypeStreakReminder,
			Payload:    payload,
			RunAt:      runAt,
			Status:     StatusPending,
		}
		return tx.Create(&j).Error
	})
}

// Claim one due job atomically using SKIP LOCKED.
// Works on Postgres.
func (r *Repo) Claim(ctx context.Context, workerID string) (*Job, error) {
	var job Job
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// requeue jobs whose worker died mid-run
		if err := tx.Exec(`
update jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=now()
where status='RUNNING' and locked_at is not null and locked_at < now() - interval '5 minutes'
`).Error; err != nil {
			return err
		}

		// FOR UPDATE SKIP LOCKED ensures no double-claim
		q := tx.Raw(`
with cte as (
  select id
  from jobs
  where status='PENDING' and run_at <= now()
  order by run_at asc
  for update skip locked
  limit 1
)
update jobs
set status='RUNNING', locked_by=?, locked_at=now(), updated_at=now()
where id in (select id from cte)
returning *;
`, workerID)

		return q.Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='DONE', updated_at=now() where id=?`, id).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='FAILED', last_error=?, updated_at=now() where id=?`, errMsg, id).Error
}

func (r *Repo) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status='PENDING',
    attempts=?,
    run_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, runAt, errMsg, id).Error
}
