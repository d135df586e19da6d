package locksvc

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/ratiba/core"
)

const (
	keyPrefix    = "ratiba:lock:"
	retryBackoff = 50 * time.Millisecond

	defaultLockTTL = 30 * time.Second
	minLockTTL     = 5 * time.Second
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lock's lease only if it still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker serializes work per key across every process sharing the redis server.
// The holder renews its lease every ttl/3 until it releases the lock, so a lock only
// expires, after `ttl`, when its holder dies or loses redis.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ core.Locker = (*RedisLocker)(nil)

func NewRedisClient(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

// NewRedisLocker returns a locker whose leases last `ttl`, 30s if unset.
// A ttl under 5s is raised to 5s.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger core.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: leaseTTL(ttl), logger: logger}
}

func leaseTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl <= 0:
		return defaultLockTTL
	case ttl < minLockTTL:
		return minLockTTL
	}
	return ttl
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = keyPrefix + key
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "locking %s", key)
		}
		if ok {
			break
		}

		timer := time.NewTimer(retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	done := make(chan struct{})
	go l.renew(key, token, done)

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })

		// the caller's ctx may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Error("releasing lock "+key, err)
		}
	}, nil
}

// renew keeps extending the lease of `key` until done is closed or the lease is lost.
func (l *RedisLocker) renew(key, token string, done <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		n, err := renewScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int64()
		cancel()
		switch {
		case err != nil:
			l.logger.Warn("renewing lock "+key, err)
		case n == 0:
			l.logger.Error("lock "+key+" was lost before release", errors.New("lock lease expired"))
			return
		}
	}
}

// New returns the redis locker when redis is configured, the process-local one otherwise.
func New(conf core.RedisConfig, logger core.Logger) (core.Locker, func() error, error) {
	if conf.Address == "" {
		logger.Warn("redis address is not set, locks are process-local")
		return NewLocalLocker(), func() error { return nil }, nil
	}

	client := NewRedisClient(conf)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrap(err, "pinging redis")
	}
	return NewRedisLocker(client, conf.LockTTL, logger), client.Close, nil
}
