package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ideaspark/internal/journal"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, key journal.Key, j *journal.Journal) error {
	row, err := toRow(key, j)
	if err != nil {
		return err
	}

	// on conflict do nothing: a taken key or owner shows up as zero rows
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return journal.ErrAlreadyInitialized
		}
		return fmt.Errorf("create journal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return journal.ErrAlreadyInitialized
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key journal.Key) (*journal.Journal, error) {
	var row JournalRow
	if err := s.DB.WithContext(ctx).Where("key = ?", key.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, journal.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get journal: %w", err)
	}
	return row.toJournal()
}

func (s *Store) Update(ctx context.Context, key journal.Key, fn func(*journal.Journal) error) (*journal.Journal, error) {
	var out *journal.Journal

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the row FOR UPDATE; other keys are untouched
		var row JournalRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key.String()).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return journal.ErrRecordNotFound
			}
			return err
		}

		j, err := row.toJournal()
		if err != nil {
			return err
		}
		if err := fn(j); err != nil {
			return err
		}

		next, err := toRow(key, j)
		if err != nil {
			return err
		}
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		out = j
		return nil
	})
	if err != nil {
		if _, ok := journal.KindOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("update journal: %w", err)
	}
	return out, nil
}
