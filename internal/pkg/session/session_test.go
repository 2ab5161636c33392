package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	pkgredis "github.com/perfectdish/core/internal/pkg/redis"
)

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(pkgredis.Wrap(rdb), ttl), mr
}

func TestIssueAndResolve(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	token, err := m.Issue(ctx, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, ok, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestResolveUnknownToken(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	got, ok, err := m.Resolve(context.Background(), "not-a-real-token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, primitive.NilObjectID, got)
}

func TestResolveEmptyToken(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	_, ok, err := m.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	m, mr := newTestManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Issue(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, ok, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, err := m.Issue(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(ctx, token))

	_, ok, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Invalidating again is a no-op, not an error.
	assert.NoError(t, m.Invalidate(ctx, token))
	assert.NoError(t, m.Invalidate(ctx, ""))
}

func TestTokensAreUnique(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	a, err := m.Issue(ctx, userID)
	require.NoError(t, err)
	b, err := m.Issue(ctx, userID)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	// Both sessions stay live; there is no concurrent-session limit.
	_, okA, _ := m.Resolve(ctx, a)
	_, okB, _ := m.Resolve(ctx, b)
	assert.True(t, okA)
	assert.True(t, okB)
}
