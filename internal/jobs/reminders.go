package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ideaspark/internal/journal"
)

type reminderQueue interface {
	ReplaceReminder(ctx context.Context, owner uuid.UUID, journalKey string, p reminderPayload, runAt time.Time) error
}

// Reminders schedules a nudge Lead before a journal's streak window closes.
type Reminders struct {
	Queue reminderQueue
	Lead  time.Duration
}

func (r *Reminders) IdeaLogged(ctx context.Context, key journal.Key, j *journal.Journal) error {
	return r.Queue.ReplaceReminder(ctx, j.Owner, key.String(), reminderPayload{
		LastLogged: j.LastLogged,
		Streak:     j.Streak,
	}, r.runAt(j.LastLogged))
}

func (r *Reminders) runAt(lastLogged int64) time.Time {
	lead := r.Lead
	if lead < 0 || lead >= journal.StreakWindow {
		lead = 0
	}
	return time.Unix(lastLogged, 0).Add(journal.StreakWindow - lead)
}

// superseded reports whether a pending reminder targets a later log than p.
// Hooks can finish out of commit order.
func superseded(p reminderPayload, pending []Job) bool {
	for _, job := range pending {
		var q reminderPayload
		if err := json.Unmarshal(job.Payload, &q); err != nil {
			continue
		}
		if q.LastLogged > p.LastLogged {
			return true
		}
	}
	return false
}
