package journal

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxIdeaLen   = 280
	MaxIdeas     = 20
	StreakWindow = 24 * time.Hour
)

// Journal is one owner's record. Ideas are oldest first and never exceed MaxIdeas.
type Journal struct {
	Owner      Owner       `json:"owner"`
	Streak     uint64      `json:"streak"`
	LastLogged int64       `json:"last_logged"`
	CreatedAt  int64       `json:"created_at"`
	LastIdea   string      `json:"last_idea"`
	Ideas      []IdeaEntry `json:"ideas"`
}

// IdeaEntry is append-only; entries are evicted, never edited.
type IdeaEntry struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewJournal returns a fresh record for owner created at now.
// CreatedAt is at least 1 so a zero value always means "unset".
func NewJournal(owner Owner, now time.Time) *Journal {
	return &Journal{
		Owner:     owner,
		CreatedAt: max(now.Unix(), 1),
		Ideas:     make([]IdeaEntry, 0, MaxIdeas),
	}
}

// ValidateIdea checks the length bounds of an idea. Length is measured in bytes.
func ValidateIdea(text string) error {
	if len(text) > MaxIdeaLen {
		return ErrIdeaTooLong
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyIdea
	}
	return nil
}

// Authorize fails unless caller owns the journal.
func (j *Journal) Authorize(caller Owner) error {
	if caller != j.Owner {
		return ErrUnauthorized
	}
	return nil
}

// LogIdea applies one accepted idea at now. The caller has already authorized.
func (j *Journal) LogIdea(text string, now time.Time) error {
	if err := ValidateIdea(text); err != nil {
		return err
	}

	// keep history chronological even if the clock steps back
	ts := max(now.Unix(), j.CreatedAt, j.LastLogged)

	switch {
	case j.LastLogged == 0:
		j.Streak = 1
	case ts-j.LastLogged < int64(StreakWindow/time.Second):
		j.Streak++
	default:
		j.Streak = 1
	}
	j.LastLogged = ts

	j.Ideas = append(j.Ideas, IdeaEntry{Text: text, Timestamp: ts})
	if over := len(j.Ideas) - MaxIdeas; over > 0 {
		j.Ideas = append(j.Ideas[:0:0], j.Ideas[over:]...)
	}
	j.LastIdea = text
	return nil
}

// Clone returns a deep copy.
func (j *Journal) Clone() *Journal {
	c := *j
	c.Ideas = make([]IdeaEntry, len(j.Ideas), max(len(j.Ideas), MaxIdeas))
	copy(c.Ideas, j.Ideas)
	return &c
}

// Validate checks the structural invariants of a loaded record.
func (j *Journal) Validate() error {
	if j.CreatedAt <= 0 {
		return fmt.Errorf("%w: created_at %d", ErrCorruptRecord, j.CreatedAt)
	}
	if j.LastLogged < 0 {
		return fmt.Errorf("%w: last_logged %d", ErrCorruptRecord, j.LastLogged)
	}
	if len(j.LastIdea) > MaxIdeaLen {
		return fmt.Errorf("%w: last idea too long", ErrCorruptRecord)
	}
	if len(j.Ideas) > MaxIdeas {
		return fmt.Errorf("%w: %d ideas", ErrCorruptRecord, len(j.Ideas))
	}
	for i, e := range j.Ideas {
		if len(e.Text) == 0 || len(e.Text) > MaxIdeaLen {
			return fmt.Errorf("%w: idea %d has length %d", ErrCorruptRecord, i, len(e.Text))
		}
		if i > 0 && e.Timestamp < j.Ideas[i-1].Timestamp {
			return fmt.Errorf("%w: idea %d out of order", ErrCorruptRecord, i)
		}
	}
	if n := len(j.Ideas); n > 0 && j.LastIdea != j.Ideas[n-1].Text {
		return fmt.Errorf("%w: last idea does not match history", ErrCorruptRecord)
	}
	if len(j.Ideas) == 0 && (j.LastIdea != "" || j.LastLogged != 0) {
		return fmt.Errorf("%w: empty history with logged state", ErrCorruptRecord)
	}
	return nil
}
