package data

import (
	"context"
	"sync"
	"time"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/biz"
	"companysearch/internal/conf"
	"companysearch/internal/pkg/bloom"
	pkgredis "companysearch/internal/pkg/redis"
)

const (
	defaultPrefilterKey      = "companysearch:cache:fingerprints"
	defaultExpectedEntries   = 100000
	defaultFalsePositiveRate = 0.01
)

var (
	_ biz.SharedPrefilter = (*redisPrefilter)(nil)
	_ biz.Prefilter       = (*localPrefilter)(nil)
)

// redisPrefilter shares one bit set between instances. The key expires one
// cache TTL after the last write, when every entry it describes has expired.
type redisPrefilter struct {
	filter *bloom.Filter
	ttl    int
}

func (p *redisPrefilter) Add(ctx context.Context, fingerprint string) error {
	if err := p.filter.Add(ctx, fingerprint); err != nil {
		return err
	}
	_, err := p.filter.Expire(ctx, p.ttl)
	return err
}

func (p *redisPrefilter) MayContain(ctx context.Context, fingerprint string) (bool, error) {
	return p.filter.MayContain(ctx, fingerprint)
}

func (p *redisPrefilter) Reset(ctx context.Context) error {
	return p.filter.Reset(ctx)
}

// Rebuild never clears the key, since other instances may be writing to it.
// Bits of deleted entries stay until the key expires.
func (p *redisPrefilter) Rebuild(ctx context.Context, fingerprints []string) error {
	for _, fp := range fingerprints {
		if err := p.filter.Add(ctx, fp); err != nil {
			return err
		}
	}
	if len(fingerprints) == 0 {
		return nil
	}
	_, err := p.filter.Expire(ctx, p.ttl)
	return err
}

// localPrefilter keeps the fingerprints in process memory. It only sees
// writes made by this process, so it suits single-instance deployments.
type localPrefilter struct {
	mu     sync.RWMutex
	filter *bitsbloom.BloomFilter
}

func (p *localPrefilter) Add(_ context.Context, fingerprint string) error {
	p.mu.Lock()
	p.filter.AddString(fingerprint)
	p.mu.Unlock()
	return nil
}

func (p *localPrefilter) MayContain(_ context.Context, fingerprint string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter.TestString(fingerprint), nil
}

func (p *localPrefilter) Reset(_ context.Context) error {
	p.mu.Lock()
	p.filter.ClearAll()
	p.mu.Unlock()
	return nil
}

// NewPrefilter returns the fingerprint prefilter, or nil when it is
// disabled. The redis backend also yields nil when Redis is unavailable.
// Explicit bits and hashes win over the estimate.
func NewPrefilter(c *conf.Cache, cache pkgredis.Cache, logger log.Logger) biz.Prefilter {
	if c == nil || c.Prefilter == nil || !c.Prefilter.Enabled {
		return nil
	}
	helper := log.NewHelper(log.With(logger, "module", "data/prefilter"))
	pc := c.Prefilter
	key := pc.Key
	if key == "" {
		key = defaultPrefilterKey
	}
	n, p := pc.ExpectedEntries, pc.FalsePositiveRate
	if n == 0 {
		n = defaultExpectedEntries
	}
	if p == 0 {
		p = defaultFalsePositiveRate
	}
	bits, hashes := bloom.Estimate(n, p)
	if pc.Bits != 0 {
		bits = pc.Bits
	}
	if pc.Hashes != 0 {
		hashes = pc.Hashes
	}

	switch pc.Backend {
	case "local":
		helper.Infof("local cache prefilter enabled: bits=%d hashes=%d", bits, hashes)
		return &localPrefilter{filter: bitsbloom.New(bits, hashes)}
	case "", "redis":
		if cache == nil {
			helper.Warn("redis unavailable, cache prefilter disabled")
			return nil
		}
		filter := bloom.New(cache, key, bits, hashes)
		ttl := int(c.TTL.Or(biz.DefaultCacheTTL) / time.Second)
		helper.Infof("cache prefilter enabled: key=%s bits=%d hashes=%d ttl=%ds", key, filter.Bits(), filter.Hashes(), ttl)
		return &redisPrefilter{filter: filter, ttl: ttl}
	default:
		helper.Warnf("unknown prefilter backend %q, cache prefilter disabled", pc.Backend)
		return nil
	}
}
