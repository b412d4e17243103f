package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.Verify(ctx, "secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	a, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)

	ok, err := h.Verify(context.Background(), "secret1", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestHashHonorsCancelledContext(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	require.True(t, h.sem.TryAcquire(1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultCost(t *testing.T) {
	h := NewHasher(0, 0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
