package memory

import (
	"context"
	"sync"

	"ideaspark/internal/journal"
)

type slot struct {
	mu sync.Mutex
	j  *journal.Journal
}

// Store keeps journals in process. Each key has its own lock; the map lock is
// held only to find or add a slot.
type Store struct {
	mu    sync.RWMutex
	slots map[journal.Key]*slot
}

func New() *Store {
	return &Store{slots: make(map[journal.Key]*slot)}
}

func (s *Store) slot(key journal.Key, create bool) *slot {
	s.mu.RLock()
	sl, ok := s.slots[key]
	s.mu.RUnlock()
	if ok || !create {
		return sl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok = s.slots[key]; !ok {
		sl = &slot{}
		s.slots[key] = sl
	}
	return sl
}

func (s *Store) Create(ctx context.Context, key journal.Key, j *journal.Journal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// same acceptance as the encoded backends
	if err := j.Validate(); err != nil {
		return err
	}
	sl := s.slot(key, true)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.j != nil {
		return journal.ErrAlreadyInitialized
	}
	sl.j = j.Clone()
	return nil
}

func (s *Store) Get(ctx context.Context, key journal.Key) (*journal.Journal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sl := s.slot(key, false)
	if sl == nil {
		return nil, journal.ErrRecordNotFound
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.j == nil {
		return nil, journal.ErrRecordNotFound
	}
	return sl.j.Clone(), nil
}

func (s *Store) Update(ctx context.Context, key journal.Key, fn func(*journal.Journal) error) (*journal.Journal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sl := s.slot(key, false)
	if sl == nil {
		return nil, journal.ErrRecordNotFound
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.j == nil {
		return nil, journal.ErrRecordNotFound
	}
	next := sl.j.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	sl.j = next
	return next.Clone(), nil
}

// Len reports how many journals exist.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sl := range s.slots {
		sl.mu.Lock()
		if sl.j != nil {
			n++
		}
		sl.mu.Unlock()
	}
	return n
}
