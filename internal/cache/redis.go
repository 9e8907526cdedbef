package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the cache contract the read paths depend on. The cache is an
// accelerator, never a correctness dependency: an unavailable backend must
// degrade to "always miss", never to an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Exists(ctx context.Context, key string) bool
}

// Client wraps a Redis connection with degrade-to-miss semantics.
// A nil *Client is valid and behaves as a permanently empty cache.
type Client struct {
	rdb *redis.Client
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and pings it. A failed ping is reported but does
// not prevent construction: Redis may come up later, and every operation
// already tolerates an unreachable backend.
func New(opts Options) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Printf("[CACHE] Redis unavailable at %s: %v (degrading to no-cache)\n", opts.Addr, err)
	} else {
		fmt.Printf("[CACHE] Connected to Redis at %s\n", opts.Addr)
	}

	return &Client{rdb: rdb}
}

// Get returns the cached value and true on a hit. Misses and backend
// failures are indistinguishable to the caller.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		fmt.Printf("[CACHE] GET %s failed: %v\n", key, err)
		return nil, false
	}
	return val, true
}

// Set stores value under key with the given TTL. Failures are logged and
// swallowed; the caller has already computed the result it needs.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		fmt.Printf("[CACHE] SET %s failed: %v\n", key, err)
	}
}

// Exists reports whether key is present. Backend failures report absent.
func (c *Client) Exists(ctx context.Context, key string) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		fmt.Printf("[CACHE] EXISTS %s failed: %v\n", key, err)
		return false
	}
	return n > 0
}

// Ping reports backend reachability, for health checks only.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not configured")
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
