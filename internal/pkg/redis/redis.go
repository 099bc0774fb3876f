// Package redis adapts go-redis to the small key/value surface used by the
// prefilter and the normalization memo.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nil is returned for a missing key.
const Nil = redis.Nil

// Cache is what the rest of the module needs from Redis.
type Cache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, seconds int) (bool, error)
	ScriptRun(ctx context.Context, script *redis.Script, keys []string, args ...any) (any, error)
}

// Client implements Cache on a go-redis client.
type Client struct {
	rdb redis.UniversalClient
}

var _ Cache = (*Client)(nil)

// Wrap returns a Cache over rdb. The caller keeps ownership of rdb.
func Wrap(rdb redis.UniversalClient) *Client {
	return &Client{rdb: rdb}
}

// NewScript compiles a Lua script for ScriptRun.
func NewScript(src string) *redis.Script {
	return redis.NewScript(src)
}

func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// SetString stores value; a zero ttl keeps it forever.
func (c *Client) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Del(ctx, keys...).Result()
}

func (c *Client) Expire(ctx context.Context, key string, seconds int) (bool, error) {
	return c.rdb.Expire(ctx, key, time.Duration(seconds)*time.Second).Result()
}

// ScriptRun runs script with EVALSHA, loading it on first use.
func (c *Client) ScriptRun(ctx context.Context, script *redis.Script, keys []string, args ...any) (any, error) {
	return script.Run(ctx, c.rdb, keys, args...).Result()
}
