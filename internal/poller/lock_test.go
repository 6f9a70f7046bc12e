package poller

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLockUnderTest(t *testing.T) (*sweepLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return newSweepLock(rdb), mr
}

func TestSweepLock_ReleaseRemovesOwnKey(t *testing.T) {
	l, mr := newLockUnderTest(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "sweep-a")
	require.NoError(t, err)
	require.True(t, ok)

	l.Release(ctx)
	assert.False(t, mr.Exists(sweepLockKey), "owner release must delete the key")
}

func TestSweepLock_ExpiredHolderDoesNotReleaseSuccessor(t *testing.T) {
	l, mr := newLockUnderTest(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "sweep-a")
	require.NoError(t, err)
	require.True(t, ok)

	// The key outlives its TTL while the sweep is still running, and a
	// successor claims it.
	mr.FastForward(sweepLockTTL + sweepLockTTL)
	require.NoError(t, mr.Set(sweepLockKey, "sweep-b"))

	l.Release(ctx)

	got, err := mr.Get(sweepLockKey)
	require.NoError(t, err)
	assert.Equal(t, "sweep-b", got, "a stale holder must not delete the successor's lock")
}
