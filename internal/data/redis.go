package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	redis "github.com/redis/go-redis/v9"

	"companysearch/internal/conf"
	pkgredis "companysearch/internal/pkg/redis"
)

const defaultRedisTimeout = 2 * time.Second

// NewRedisCache connects to Redis. Redis is optional: with no address, or
// when the server cannot be reached, it returns a nil cache and the
// prefilter and normalization memo are disabled.
func NewRedisCache(c *conf.Data, logger log.Logger) (pkgredis.Cache, func(), error) {
	helper := log.NewHelper(log.With(logger, "module", "data/redis"))
	if c == nil || c.Redis == nil || c.Redis.Addr == "" {
		helper.Info("no redis address configured, prefilter and memo disabled")
		return nil, func() {}, nil
	}

	opts := &redis.Options{
		Addr:         c.Redis.Addr,
		Network:      c.Redis.Network,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		ReadTimeout:  c.Redis.ReadTimeout.Or(defaultRedisTimeout),
		WriteTimeout: c.Redis.WriteTimeout.Or(defaultRedisTimeout),
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		helper.Warnf("failed to connect to Redis at %s, continuing without it: %v", c.Redis.Addr, err)
		client.Close()
		return nil, func() {}, nil
	}
	helper.Infof("connected to Redis at %s", c.Redis.Addr)

	cleanup := func() {
		helper.Info("closing Redis connection")
		client.Close()
	}
	return pkgredis.Wrap(client), cleanup, nil
}
