package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Cache on a Redis server, so several decoder processes
// can share results.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// RedisOption is a configuration option for Redis.
type RedisOption func(*Redis)

// WithPrefix namespaces all keys. The default is "phrasego:".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL expires entries after ttl. 0 keeps them until evicted by the server.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis wraps an existing client. Close closes the client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: "phrasego:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis connects to a single Redis server.
func DialRedis(addr, password string, db int, opts ...RedisOption) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedis(client, opts...)
}

func (r *Redis) key(k Key) string {
	return r.prefix + k.String()
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get %s: %w", key, err)
	}
	r.hits.Add(1)
	return b, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key Key, b []byte) error {
	if err := r.client.Set(ctx, r.key(key), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Stats returns the hit and miss counters of this process.
func (r *Redis) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

// Close implements Cache.
func (r *Redis) Close() error {
	return r.client.Close()
}
