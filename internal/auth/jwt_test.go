package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_SignVerify(t *testing.T) {
	j := NewJWT("test-secret")
	id := uuid.New()

	token, err := j.Sign(id)
	require.NoError(t, err)

	got, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWT_RejectsOtherSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Sign(uuid.New())
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsExpired(t *testing.T) {
	j := NewJWT("test-secret")
	issued := time.Now().Add(-8 * 24 * time.Hour)
	j.now = func() time.Time { return issued }
	token, err := j.Sign(uuid.New())
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	_, err := NewJWT("test-secret").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
