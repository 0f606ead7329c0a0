package auth

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already used")
	ErrUserNotFound = errors.New("user not found")
)

type Users interface {
	Create(ctx context.Context, u User) error
	FindByEmail(ctx context.Context, email string) (User, error)
}

type GormUsers struct {
	DB *gorm.DB
}

func (s *GormUsers) Create(ctx context.Context, u User) error {
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *GormUsers) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

// MemoryUsers backs the memory and redis journal stores when no database is configured.
type MemoryUsers struct {
	mu      sync.RWMutex
	byEmail map[string]User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byEmail: make(map[string]User)}
}

func (s *MemoryUsers) Create(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *MemoryUsers) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}
