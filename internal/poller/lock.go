package poller

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// sweepLockKey guards against overlapping sweeps across processes; the TTL
// covers a crashed holder.
const (
	sweepLockKey = "jobwatch:sweep:lock"
	sweepLockTTL = 10 * time.Minute
)

// releaseScript deletes the lock key only when it still belongs to the
// releasing holder. A holder that outlived the TTL must not delete the
// key a successor has since claimed.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// sweepLock is the single-sweep-in-flight guard: an in-process mutex for
// the common case plus a Redis SETNX lock so a manual trigger cannot
// overlap a scheduled sweep from another process. A nil Redis client
// degrades to the local mutex alone.
type sweepLock struct {
	mu     sync.Mutex
	rdb    *redis.Client
	holder string // sweepID written to the key; guarded by mu
}

func newSweepLock(rdb *redis.Client) *sweepLock {
	return &sweepLock{rdb: rdb}
}

// TryAcquire claims the guard without blocking. sweepID identifies the
// holder in the Redis key for debugging.
func (l *sweepLock) TryAcquire(ctx context.Context, sweepID string) (bool, error) {
	if !l.mu.TryLock() {
		return false, nil
	}
	if l.rdb == nil {
		return true, nil
	}

	ok, err := l.rdb.SetNX(ctx, sweepLockKey, sweepID, sweepLockTTL).Result()
	if err != nil || !ok {
		l.mu.Unlock()
		return false, err
	}
	l.holder = sweepID
	return true, nil
}

// Release frees the guard after a sweep finishes. The Redis key is only
// deleted when this holder still owns it.
func (l *sweepLock) Release(ctx context.Context) {
	if l.rdb != nil {
		// A failed delete is bounded by the TTL.
		releaseScript.Run(ctx, l.rdb, []string{sweepLockKey}, l.holder)
	}
	l.holder = ""
	l.mu.Unlock()
}
