package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a Redis-backed cache for query results and directory listings.
// Entries live under a namespace whose version is bumped to invalidate every
// key in it at once; a bump is a single INCR, so writers invalidate
// synchronously before returning. Redis being down degrades every operation
// to a cache miss rather than an error.
type Client struct {
	rdb *redis.Client
}

// New wraps an existing redis client.
func New(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// GetJSON unmarshals the entry at key into dest. The bool result reports a
// hit; connectivity errors behave like misses.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// stale or foreign payload; treat as miss
		return false, nil
	}
	return true, nil
}

// SetJSON stores val under key with the given TTL, ignoring redis errors.
func (c *Client) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_ = c.rdb.Set(ctx, key, raw, ttl).Err()
	return nil
}

// Invalidate bumps the namespace version so every key built by Key for that
// namespace stops matching. Orphaned entries expire via their TTL.
func (c *Client) Invalidate(ctx context.Context, namespace string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	_ = c.rdb.Incr(ctx, versionKey(namespace)).Err()
	return nil
}

// Key builds a versioned cache key from the namespace and the exact input
// tuple identifying the cached computation.
func (c *Client) Key(ctx context.Context, namespace string, parts ...string) string {
	version := "0"
	if c != nil && c.rdb != nil {
		if v, err := c.rdb.Get(ctx, versionKey(namespace)).Result(); err == nil {
			version = v
		}
	}
	return namespace + ":v" + version + ":" + strings.Join(parts, ":")
}

func versionKey(namespace string) string {
	return namespace + ":ver"
}
