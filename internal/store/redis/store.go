package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ideaspark/internal/journal"
)

const (
	keyPrefix         = "ideaspark:journal:"
	defaultMaxRetries = 16
)

// ErrContention is returned when a key kept changing under Update.
var ErrContention = errors.New("journal update contended, retries exhausted")

// Store keeps each journal as its binary record under one redis key.
// Update is an optimistic WATCH/MULTI transaction on that key only.
type Store struct {
	rdb        redis.UniversalClient
	maxRetries int
}

func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb, maxRetries: defaultMaxRetries}
}

func redisKey(key journal.Key) string {
	return keyPrefix + key.String()
}

func (s *Store) Create(ctx context.Context, key journal.Key, j *journal.Journal) error {
	b, err := j.MarshalBinary()
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, redisKey(key), b, 0).Result()
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	if !ok {
		return journal.ErrAlreadyInitialized
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key journal.Key) (*journal.Journal, error) {
	return get(ctx, s.rdb, key)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func get(ctx context.Context, c getter, key journal.Key) (*journal.Journal, error) {
	b, err := c.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, journal.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get journal: %w", err)
	}
	var j journal.Journal
	if err := j.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) Update(ctx context.Context, key journal.Key, fn func(*journal.Journal) error) (*journal.Journal, error) {
	rk := redisKey(key)
	var out *journal.Journal

	txf := func(tx *redis.Tx) error {
		j, err := get(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(j); err != nil {
			return err
		}
		b, err := j.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, b, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = j
		return nil
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, rk)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if _, ok := journal.KindOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("update journal: %w", err)
	}
	return nil, ErrContention
}
