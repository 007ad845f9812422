package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix namespaces every key.
	DefaultRedisPrefix = "scout:"
	// DefaultLockTTL is the lease on the lock key. A live holder keeps renewing
	// it, so it only bounds how long a crashed holder blocks others.
	DefaultLockTTL = 2 * time.Minute

	redisLockKey = "lock"
)

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisOptions configures RedisBackend.
type RedisOptions struct {
	Addr     string
	DB       int
	Password string
	Prefix   string
	LockTTL  time.Duration
}

// RedisBackend stores each document under one key.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	lockTTL time.Duration
}

// NewRedisBackend connects and pings the server.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		DB:       opts.DB,
		Password: opts.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return NewRedisBackendWithClient(client, opts.Prefix, opts.LockTTL), nil
}

// NewRedisBackendWithClient wraps an existing client.
func NewRedisBackendWithClient(client *redis.Client, prefix string, lockTTL time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &RedisBackend{client: client, prefix: prefix, lockTTL: lockTTL}
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + name
}

func (b *RedisBackend) Read(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *RedisBackend) Write(ctx context.Context, name string, data []byte) error {
	return b.client.Set(ctx, b.key(name), data, 0).Err()
}

func (b *RedisBackend) Lock(ctx context.Context) (func() error, error) {
	key := b.key(redisLockKey)
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryDelay)
	defer ticker.Stop()
	for {
		ok, err := b.client.SetNX(ctx, key, token, b.lockTTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("locking %s: %w", key, err)
		}
		if ok {
			stop := make(chan struct{})
			done := make(chan struct{})
			go b.renew(key, token, stop, done)

			var once sync.Once
			return func() error {
				once.Do(func() { close(stop) })
				<-done
				return unlockScript.Run(context.Background(), b.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLocked, key)
		case <-ticker.C:
		}
	}
}

// renew extends the lease every third of the TTL until stop is closed or
// the key no longer carries token.
func (b *RedisBackend) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.lockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		n, err := renewScript.Run(context.Background(), b.client, []string{key}, token, b.lockTTL.Milliseconds()).Int()
		if err != nil || n == 0 {
			return
		}
	}
}

func (b *RedisBackend) Count(ctx context.Context, prefix string) (int, error) {
	n := 0
	iter := b.client.Scan(ctx, 0, b.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if strings.HasSuffix(iter.Val(), ".json") {
			n++
		}
	}
	return n, iter.Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
