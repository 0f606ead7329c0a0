package journal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Hook runs after a LogIdea commit.
type Hook interface {
	IdeaLogged(ctx context.Context, key Key, j *Journal) error
}

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
	hook  Hook
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithHook(h Hook) Option {
	return func(s *Service) { s.hook = h }
}

func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store: store,
		log:   logger,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the key of owner's journal.
func (s *Service) Key(owner Owner) Key {
	return Derive(owner)
}

// InitializeJournal creates owner's journal. A second call always fails.
func (s *Service) InitializeJournal(ctx context.Context, owner Owner) (*Journal, error) {
	key := Derive(owner)
	j := NewJournal(owner, s.now())
	if err := s.store.Create(ctx, key, j); err != nil {
		return nil, err
	}

	s.log.Info("journal initialized",
		zap.String("owner", owner.String()),
		zap.String("key", key.String()),
	)
	return j, nil
}

// LogIdea appends text to the journal at key on behalf of caller.
func (s *Service) LogIdea(ctx context.Context, caller Owner, key Key, text string) (*Journal, error) {
	j, err := s.store.Update(ctx, key, func(j *Journal) error {
		if err := j.Authorize(caller); err != nil {
			return err
		}
		return j.LogIdea(text, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("idea logged",
		zap.String("owner", caller.String()),
		zap.Uint64("streak", j.Streak),
		zap.Int("ideas", len(j.Ideas)),
	)

	if s.hook != nil {
		if err := s.hook.IdeaLogged(ctx, key, j); err != nil {
			s.log.Warn("idea logged hook failed",
				zap.String("key", key.String()),
				zap.Error(err),
			)
		}
	}
	return j, nil
}

// GetStreak returns the current streak and the record it was read from.
func (s *Service) GetStreak(ctx context.Context, caller Owner, key Key) (uint64, *Journal, error) {
	j, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, nil, err
	}
	if err := j.Authorize(caller); err != nil {
		return 0, nil, err
	}

	s.log.Debug("streak read",
		zap.String("owner", caller.String()),
		zap.Uint64("streak", j.Streak),
	)
	return j.Streak, j, nil
}

func (s *Service) LogOwnIdea(ctx context.Context, owner Owner, text string) (*Journal, error) {
	return s.LogIdea(ctx, owner, Derive(owner), text)
}

func (s *Service) GetOwnStreak(ctx context.Context, owner Owner) (uint64, *Journal, error) {
	return s.GetStreak(ctx, owner, Derive(owner))
}
