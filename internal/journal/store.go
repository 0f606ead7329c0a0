package journal

import "context"

// Store persists journals by key.
//
// Update must give exclusive access per key: fn sees the last committed record,
// and its changes are committed only if it returns nil. Operations on different
// keys must not block each other.
type Store interface {
	// Create fails with ErrAlreadyInitialized if key is taken.
	Create(ctx context.Context, key Key, j *Journal) error
	// Get fails with ErrRecordNotFound if key is absent.
	Get(ctx context.Context, key Key) (*Journal, error)
	Update(ctx context.Context, key Key, fn func(*Journal) error) (*Journal, error)
}
