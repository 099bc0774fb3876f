package server

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"

	"companysearch/internal/biz"
	"companysearch/internal/conf"
)

const defaultSweepInterval = 10 * time.Minute

var _ transport.Server = (*Sweeper)(nil)

// Sweeper rebuilds the cache prefilter at startup, then deletes expired
// cache entries on a fixed interval until stopped.
type Sweeper struct {
	cache    *biz.SearchCacheUsecase
	interval time.Duration
	log      *log.Helper

	once sync.Once
	done chan struct{}
}

// NewSweeper new a sweeper.
func NewSweeper(c *conf.Cache, cache *biz.SearchCacheUsecase, logger log.Logger) *Sweeper {
	interval := defaultSweepInterval
	if c != nil {
		interval = c.SweepInterval.Or(defaultSweepInterval)
	}
	return &Sweeper{
		cache:    cache,
		interval: interval,
		log:      log.NewHelper(log.With(logger, "module", "server/sweeper")),
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cache.RebuildPrefilter(ctx); err != nil {
		s.log.Warnf("prefilter rebuild failed, lookups may miss until the next restart: %v", err)
	}
	s.log.Infof("sweeping expired cache entries every %s", s.interval)

	t := time.NewTimer(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-t.C:
			s.cache.SweepExpired(ctx)
			t.Reset(s.interval)
		}
	}
}

// Stop ends the sweep loop.
func (s *Sweeper) Stop(context.Context) error {
	s.once.Do(func() { close(s.done) })
	return nil
}
