package dialogue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jarvis/backend/go/pkg/keylock"
	"jarvis/backend/go/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// LocalLocker serializes conversations inside one process.
type LocalLocker struct {
	locks *keylock.KeyLock
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: keylock.New()}
}

func (l *LocalLocker) Acquire(ctx context.Context, conversationID string) (func(), error) {
	return l.locks.Lock(ctx, conversationID)
}

const (
	lockKeyPrefix    = "jarvis:lock:"
	lockPollInterval = 20 * time.Millisecond
)

// releaseScript deletes the lock only if it still carries our token, so an
// expired lease taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while we still hold it.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker serializes conversations across processes with a leased
// Redis key. The lease bounds how long a crashed holder blocks others; a
// live holder renews it every lease/3 until released.
type RedisLocker struct {
	rdb   *redis.Client
	lease time.Duration
	log   *logger.Logger
}

// NewRedisLocker creates a RedisLocker.
func NewRedisLocker(rdb *redis.Client, lease time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, lease: lease, log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, conversationID string) (func(), error) {
	key := lockKeyPrefix + conversationID
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire conversation lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
				l.log.WithField("lock_key", key).WithErr(err).Warn("failed to release conversation lock")
			}
		})
	}
}

// renew 定期续租，直到 stop 关闭或租约已被他人接管。
func (l *RedisLocker) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.lease / 3
	if interval <= 0 {
		interval = lockPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := renewScript.Run(ctx, l.rdb, []string{key}, token, l.lease.Milliseconds()).Int64()
		cancel()
		if err != nil {
			l.log.WithField("lock_key", key).WithErr(err).Warn("failed to renew conversation lock")
			continue
		}
		if n == 0 {
			l.log.WithField("lock_key", key).Error("conversation lock lease lost before release")
			return
		}
	}
}
