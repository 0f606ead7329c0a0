package journal_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ideaspark/internal/journal"
	"ideaspark/internal/store/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingHook struct {
	mu    sync.Mutex
	calls []journal.Journal
	err   error
}

func (h *recordingHook) IdeaLogged(_ context.Context, _ journal.Key, j *journal.Journal) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, *j.Clone())
	return h.err
}

func newService(t *testing.T, opts ...journal.Option) (*journal.Service, *memory.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := memory.New()
	opts = append([]journal.Option{journal.WithClock(clock.Now)}, opts...)
	return journal.NewService(store, zap.NewNop(), opts...), store, clock
}

func TestService_InitializeJournal(t *testing.T) {
	svc, store, clock := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	j, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, j.Owner)
	assert.Zero(t, j.Streak)
	assert.Zero(t, j.LastLogged)
	assert.Equal(t, clock.Now().Unix(), j.CreatedAt)
	assert.Empty(t, j.LastIdea)
	assert.Empty(t, j.Ideas)

	stored, err := store.Get(ctx, journal.Derive(owner))
	require.NoError(t, err)
	assert.Equal(t, j.CreatedAt, stored.CreatedAt)
}

func TestService_InitializeJournal_ClockAtEpoch(t *testing.T) {
	store := memory.New()
	clock := &fakeClock{now: time.Unix(0, 0)}
	svc := journal.NewService(store, zap.NewNop(), journal.WithClock(clock.Now))
	ctx := context.Background()
	owner := uuid.New()

	j, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), j.CreatedAt)

	stored, err := store.Get(ctx, journal.Derive(owner))
	require.NoError(t, err)
	assert.NoError(t, stored.Validate())
}

func TestService_InitializeJournal_Twice(t *testing.T) {
	svc, store, clock := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	first, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.InitializeJournal(ctx, owner)
	assert.ErrorIs(t, err, journal.ErrAlreadyInitialized)

	stored, err := store.Get(ctx, journal.Derive(owner))
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, stored.CreatedAt)
	assert.Equal(t, 1, store.Len())
}

func TestService_InitializeJournal_AfterLogsKeepsState(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)
	_, err = svc.LogOwnIdea(ctx, owner, "keep me")
	require.NoError(t, err)

	_, err = svc.InitializeJournal(ctx, owner)
	require.ErrorIs(t, err, journal.ErrAlreadyInitialized)

	streak, j, err := svc.GetOwnStreak(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), streak)
	assert.Equal(t, "keep me", j.LastIdea)
}

func TestService_LogIdea_Streak(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	j, err := svc.LogOwnIdea(ctx, owner, "A self-watering plant pot")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), j.Streak)
	assert.Greater(t, j.LastLogged, int64(0))
	require.Len(t, j.Ideas, 1)

	clock.Advance(3 * time.Second)
	j, err = svc.LogOwnIdea(ctx, owner, "Shared grocery lists")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), j.Streak)
	assert.Equal(t, "Shared grocery lists", j.LastIdea)
	require.Len(t, j.Ideas, 2)
	assert.Equal(t, "Shared grocery lists", j.Ideas[1].Text)
	assert.GreaterOrEqual(t, j.Ideas[1].Timestamp, j.Ideas[0].Timestamp)

	clock.Advance(25 * time.Hour)
	j, err = svc.LogOwnIdea(ctx, owner, "after a break")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), j.Streak)
}

func TestService_LogIdea_Validation(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	_, err = svc.LogOwnIdea(ctx, owner, "")
	assert.ErrorIs(t, err, journal.ErrEmptyIdea)

	_, err = svc.LogOwnIdea(ctx, owner, strings.Repeat("a", 281))
	assert.ErrorIs(t, err, journal.ErrIdeaTooLong)

	j, err := store.Get(ctx, journal.Derive(owner))
	require.NoError(t, err)
	assert.Zero(t, j.Streak)
	assert.Empty(t, j.Ideas)

	j, err = svc.LogOwnIdea(ctx, owner, strings.Repeat("a", 280))
	require.NoError(t, err)
	assert.Len(t, j.LastIdea, 280)
}

func TestService_LogIdea_BoundedHistory(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	for i := 1; i <= 22; i++ {
		clock.Advance(time.Second)
		_, err := svc.LogOwnIdea(ctx, owner, fmt.Sprintf("Test idea number %d", i))
		require.NoError(t, err)
	}

	_, j, err := svc.GetOwnStreak(ctx, owner)
	require.NoError(t, err)
	require.Len(t, j.Ideas, journal.MaxIdeas)
	assert.Equal(t, "Test idea number 3", j.Ideas[0].Text)
	assert.Equal(t, "Test idea number 22", j.Ideas[19].Text)
	for i := 1; i < len(j.Ideas); i++ {
		assert.LessOrEqual(t, j.Ideas[i-1].Timestamp, j.Ideas[i].Timestamp)
	}
}

func TestService_RecordNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.LogOwnIdea(ctx, owner, "idea")
	assert.ErrorIs(t, err, journal.ErrRecordNotFound)

	_, _, err = svc.GetOwnStreak(ctx, owner)
	assert.ErrorIs(t, err, journal.ErrRecordNotFound)
}

func TestService_Authorization(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	alice, mallory := uuid.New(), uuid.New()

	_, err := svc.InitializeJournal(ctx, alice)
	require.NoError(t, err)
	_, err = svc.LogOwnIdea(ctx, alice, "mine")
	require.NoError(t, err)
	aliceKey := svc.Key(alice)

	_, err = svc.LogIdea(ctx, mallory, aliceKey, "not yours")
	assert.ErrorIs(t, err, journal.ErrUnauthorized)

	// authorization is checked before text validation
	_, err = svc.LogIdea(ctx, mallory, aliceKey, "")
	assert.ErrorIs(t, err, journal.ErrUnauthorized)

	_, _, err = svc.GetStreak(ctx, mallory, aliceKey)
	assert.ErrorIs(t, err, journal.ErrUnauthorized)

	j, err := store.Get(ctx, aliceKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), j.Streak)
	assert.Equal(t, "mine", j.LastIdea)
	assert.Len(t, j.Ideas, 1)
}

func TestService_Isolation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	require.NotEqual(t, journal.Derive(a), journal.Derive(b))

	_, err := svc.InitializeJournal(ctx, a)
	require.NoError(t, err)
	_, err = svc.InitializeJournal(ctx, b)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.LogOwnIdea(ctx, b, "b idea")
		require.NoError(t, err)
	}

	streakA, ja, err := svc.GetOwnStreak(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, streakA)
	assert.Empty(t, ja.Ideas)

	streakB, jb, err := svc.GetOwnStreak(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), streakB)
	assert.Equal(t, b, jb.Owner)
}

func TestService_GetStreak_ReturnsCopy(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	_, j, err := svc.GetOwnStreak(ctx, owner)
	require.NoError(t, err)
	j.Streak = 99

	streak, _, err := svc.GetOwnStreak(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, streak)
}

func TestService_ConcurrentLogsOnOneJournal(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.LogOwnIdea(ctx, owner, fmt.Sprintf("idea %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	streak, j, err := svc.GetOwnStreak(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), streak)
	assert.Len(t, j.Ideas, journal.MaxIdeas)
}

func TestService_Hook(t *testing.T) {
	hook := &recordingHook{}
	svc, _, _ := newService(t, journal.WithHook(hook))
	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	_, err = svc.LogOwnIdea(ctx, owner, "")
	require.Error(t, err)
	assert.Empty(t, hook.calls)

	_, err = svc.LogOwnIdea(ctx, owner, "hooked")
	require.NoError(t, err)
	require.Len(t, hook.calls, 1)
	assert.Equal(t, "hooked", hook.calls[0].LastIdea)
}

func TestService_HookErrorIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	hook := &recordingHook{err: errors.New("queue down")}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	svc := journal.NewService(memory.New(), zap.New(core), journal.WithClock(clock.Now), journal.WithHook(hook))

	ctx := context.Background()
	owner := uuid.New()
	_, err := svc.InitializeJournal(ctx, owner)
	require.NoError(t, err)

	j, err := svc.LogOwnIdea(ctx, owner, "still saved")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), j.Streak)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "idea logged hook failed", logs.All()[0].Message)
}
