// Package cache holds the Redis state shared by API instances: the token
// buckets behind per-IP and per-identity rate limits.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key this package writes.
const DefaultKeyPrefix = "devconnect"

const (
	defaultPoolSize = 10
	defaultMinIdle  = 2
	pingTimeout     = 3 * time.Second
)

// Cache is a Redis client scoped to a key namespace.
type Cache struct {
	client    *redis.Client
	keyPrefix string
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	keyPrefix string
	poolSize  int
}

// WithKeyPrefix sets the namespace prepended to every key.
// Separate deployments sharing one Redis should use distinct prefixes.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = strings.TrimSuffix(prefix, ":") }
}

// WithPoolSize overrides the connection pool size.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	o := options{keyPrefix: DefaultKeyPrefix, poolSize: defaultPoolSize}
	for _, opt := range opts {
		opt(&o)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.PoolSize = o.poolSize
	redisOpts.MinIdleConns = defaultMinIdle
	redisOpts.PoolTimeout = 4 * time.Second
	redisOpts.ConnMaxIdleTime = 5 * time.Minute

	c := &Cache{client: redis.NewClient(redisOpts), keyPrefix: o.keyPrefix}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return c, nil
}

// key joins parts under the cache namespace, e.g. devconnect:ratelimit:ip:ab12.
func (c *Cache) key(parts ...string) string {
	prefix := c.keyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// Ping checks Redis connectivity. It backs the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for test setup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
