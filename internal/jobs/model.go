package jobs

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeStreakReminder = "STREAK_REMINDER"

	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
)

type Job struct {
	ID    uint64    `gorm:"primaryKey"`
	Owner uuid.UUID `gorm:"type:uuid;index;not null"`
	// JournalKey is the hex journal key the job targets.
	JournalKey string `gorm:"type:char(64);index;not null"`

	Type    string `gorm:"type:text;not null"`
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// reminderPayload pins the log the reminder was scheduled for.
type reminderPayload struct {
	LastLogged int64  `json:"last_logged"`
	Streak     uint64 `json:"streak"`
}
