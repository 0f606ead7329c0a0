package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ideaspark/internal/journal"
)

// JournalRow is one journal. The idea text lives only in Record, the binary
// journal encoding, so arbitrary bytes survive the round trip. The scalar
// columns mirror it for queries.
type JournalRow struct {
	Key        string    `gorm:"primaryKey;type:char(64)"`
	Owner      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Streak     uint64    `gorm:"not null;default:0"`
	LastLogged int64     `gorm:"not null;default:0"`
	CreatedAt  int64     `gorm:"not null;autoCreateTime:false"`
	Record     []byte    `gorm:"type:bytea;not null"`
	UpdatedAt  time.Time `gorm:"not null;default:now()"`
}

func (JournalRow) TableName() string { return "journals" }

func toRow(key journal.Key, j *journal.Journal) (JournalRow, error) {
	rec, err := j.MarshalBinary()
	if err != nil {
		return JournalRow{}, err
	}
	return JournalRow{
		Key:        key.String(),
		Owner:      j.Owner,
		Streak:     j.Streak,
		LastLogged: j.LastLogged,
		CreatedAt:  j.CreatedAt,
		Record:     rec,
		UpdatedAt:  time.Now(),
	}, nil
}

func (r JournalRow) toJournal() (*journal.Journal, error) {
	var j journal.Journal
	if err := j.UnmarshalBinary(r.Record); err != nil {
		return nil, fmt.Errorf("journal %s: %w", r.Key, err)
	}
	if j.Owner != r.Owner || j.Streak != r.Streak || j.LastLogged != r.LastLogged {
		return nil, fmt.Errorf("%w: journal %s columns disagree with record", journal.ErrCorruptRecord, r.Key)
	}
	return &j, nil
}
