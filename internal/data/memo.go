package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/conf"
	"companysearch/internal/pkg/hash"
	"companysearch/internal/pkg/query"
	pkgredis "companysearch/internal/pkg/redis"
)

const (
	memoKeyPrefix  = "companysearch:normalized:"
	defaultMemoTTL = 24 * time.Hour
)

// redisMemo remembers generated normalizations so repeated queries do not
// call the model again.
type redisMemo struct {
	cache pkgredis.Cache
	ttl   time.Duration
	log   *log.Helper
}

// NewNormalizationMemo returns a Redis backed memo, or nil without Redis.
func NewNormalizationMemo(c *conf.AI, cache pkgredis.Cache, logger log.Logger) query.Memo {
	if cache == nil {
		return nil
	}
	ttl := defaultMemoTTL
	if c != nil {
		ttl = c.MemoTTL.Or(defaultMemoTTL)
	}
	return &redisMemo{
		cache: cache,
		ttl:   ttl,
		log:   log.NewHelper(log.With(logger, "module", "data/memo")),
	}
}

func memoKey(raw string) string {
	return memoKeyPrefix + hash.Short(raw)
}

func (m *redisMemo) Lookup(ctx context.Context, raw string) (string, bool) {
	v, err := m.cache.GetString(ctx, memoKey(raw))
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			m.log.WithContext(ctx).Warnf("memo lookup failed: %v", err)
		}
		return "", false
	}
	return v, true
}

func (m *redisMemo) Store(ctx context.Context, raw, normalized string) {
	if err := m.cache.SetString(ctx, memoKey(raw), normalized, m.ttl); err != nil {
		m.log.WithContext(ctx).Warnf("memo store failed: %v", err)
	}
}
