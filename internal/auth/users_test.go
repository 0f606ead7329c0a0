package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers()
	u := NewUser("ada@example.com", "hash")

	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, NewUser("ada@example.com", "other")), ErrEmailTaken)

	got, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
