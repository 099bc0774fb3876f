package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/conf"
	"companysearch/internal/pkg/query"
)

const (
	// DefaultCacheTTL is added to the write time of every entry.
	DefaultCacheTTL = 168 * time.Hour

	topEntriesLimit  = 10
	suggestionsLimit = 5
)

// SearchCacheRepo persists cache entries keyed by fingerprint.
type SearchCacheRepo interface {
	// Get returns nil, nil when the fingerprint is absent.
	Get(ctx context.Context, fingerprint string) (*CacheEntry, error)
	// Upsert inserts e, or replaces results, total, source, updated and
	// expiry of the existing row. HitCount and CreatedAt of an existing row are kept.
	Upsert(ctx context.Context, e *CacheEntry) error
	// Touch increments the hit counter of a live entry and returns the new
	// value, or ErrCacheEntryNotFound.
	Touch(ctx context.Context, fingerprint string, now time.Time) (int64, error)
	Delete(ctx context.Context, fingerprint string) (bool, error)
	// DeleteIfExpired removes the entry only if it is still expired at now.
	DeleteIfExpired(ctx context.Context, fingerprint string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
	TopByHits(ctx context.Context, limit int) ([]*CacheEntry, error)
	// FindSimilarQueries returns the distinct query strings of unexpired
	// entries containing any term, case-insensitively, ordered by their
	// highest hit count descending.
	FindSimilarQueries(ctx context.Context, terms []string, now time.Time, limit int) ([]string, error)
	ListFingerprints(ctx context.Context) ([]string, error)
	List(ctx context.Context, limit, offset int) ([]*CacheEntry, error)
}

// Prefilter is a probabilistic set of fingerprints known to the store.
// MayContain must never report false for a fingerprint that was added.
type Prefilter interface {
	Add(ctx context.Context, fingerprint string) error
	MayContain(ctx context.Context, fingerprint string) (bool, error)
	Reset(ctx context.Context) error
}

// SharedPrefilter is a Prefilter whose bits other instances also write.
// Rebuild adds fingerprints without clearing what the others recorded.
type SharedPrefilter interface {
	Prefilter
	Rebuild(ctx context.Context, fingerprints []string) error
}

// CacheKey is a computed fingerprint together with its request.
type CacheKey struct {
	Fingerprint string
	Query       SearchQuery
	Canonical   query.Canonical
}

// SearchCacheUsecase is the search-result cache.
type SearchCacheUsecase struct {
	repo      SearchCacheRepo
	keys      *query.KeyBuilder
	extractor query.KeywordExtractor
	prefilter Prefilter
	ttl       time.Duration
	now       func() time.Time
	log       *log.Helper
}

// NewSearchCacheUsecase new a search cache usecase. prefilter may be nil.
func NewSearchCacheUsecase(
	c *conf.Cache,
	repo SearchCacheRepo,
	keys *query.KeyBuilder,
	extractor query.KeywordExtractor,
	prefilter Prefilter,
	logger log.Logger,
) *SearchCacheUsecase {
	ttl := DefaultCacheTTL
	if c != nil {
		ttl = c.TTL.Or(DefaultCacheTTL)
	}
	return &SearchCacheUsecase{
		repo:      repo,
		keys:      keys,
		extractor: extractor,
		prefilter: prefilter,
		ttl:       ttl,
		now:       time.Now,
		log:       log.NewHelper(log.With(logger, "module", "biz/cache")),
	}
}

// SetClock replaces the time source.
func (uc *SearchCacheUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// TTL returns the configured entry lifetime.
func (uc *SearchCacheUsecase) TTL() time.Duration {
	return uc.ttl
}

// Key computes the fingerprint of q.
func (uc *SearchCacheUsecase) Key(ctx context.Context, q SearchQuery) CacheKey {
	canonical := uc.keys.Canonicalize(ctx, q.Facets())
	return CacheKey{
		Fingerprint: canonical.Fingerprint(),
		Query:       q,
		Canonical:   canonical,
	}
}

// Get looks q up. Failures are reported as misses.
func (uc *SearchCacheUsecase) Get(ctx context.Context, q SearchQuery) (*CachedResults, bool) {
	return uc.GetKey(ctx, uc.Key(ctx, q))
}

// GetKey looks up an already computed key.
func (uc *SearchCacheUsecase) GetKey(ctx context.Context, key CacheKey) (*CachedResults, bool) {
	fp := key.Fingerprint
	if uc.prefilter != nil {
		ok, err := uc.prefilter.MayContain(ctx, fp)
		if err != nil {
			uc.log.WithContext(ctx).Warnf("prefilter lookup failed: %v", err)
		} else if !ok {
			return nil, false
		}
	}

	entry, err := uc.repo.Get(ctx, fp)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("cache read failed for %q: %v", key.Query.Text, err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	now := uc.now()
	if entry.Expired(now) {
		if _, err := uc.repo.DeleteIfExpired(ctx, fp, now); err != nil {
			uc.log.WithContext(ctx).Warnf("failed to evict expired entry %s: %v", fp, err)
		}
		return nil, false
	}

	hits, err := uc.repo.Touch(ctx, fp, now)
	if err != nil {
		if !errors.Is(err, ErrCacheEntryNotFound) {
			uc.log.WithContext(ctx).Errorf("cache hit update failed for %s: %v", fp, err)
		}
		return nil, false
	}

	uc.log.WithContext(ctx).Infof("cache hit for %q (%d hits)", key.Query.Text, hits)
	return &CachedResults{
		Companies:  entry.Results,
		TotalFound: entry.TotalFound,
		Source:     fmt.Sprintf("cache (%s)", entry.Source),
		HitCount:   hits,
		ExpiresAt:  entry.ExpiresAt,
	}, true
}

// Put stores results for q. Failures are logged only.
func (uc *SearchCacheUsecase) Put(ctx context.Context, q SearchQuery, results SearchResults) {
	uc.PutKey(ctx, uc.Key(ctx, q), results)
}

// PutKey stores results under an already computed key.
func (uc *SearchCacheUsecase) PutKey(ctx context.Context, key CacheKey, results SearchResults) {
	now := uc.now()
	companies := results.Companies
	if companies == nil {
		companies = []*Company{}
	}
	entry := &CacheEntry{
		Fingerprint: key.Fingerprint,
		Query:       key.Query.Text,
		Hashtags:    key.Canonical.Hashtags,
		Networks:    key.Canonical.Networks,
		Language:    key.Canonical.Lang,
		Results:     companies,
		TotalFound:  results.TotalFound,
		Source:      results.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(uc.ttl),
	}
	if err := uc.repo.Upsert(ctx, entry); err != nil {
		uc.log.WithContext(ctx).Errorf("cache write failed for %q: %v", key.Query.Text, err)
		return
	}
	if uc.prefilter != nil {
		if err := uc.prefilter.Add(ctx, key.Fingerprint); err != nil {
			uc.log.WithContext(ctx).Warnf("prefilter add failed: %v", err)
		}
	}
	uc.log.WithContext(ctx).Infof("cached %d results for %q (expires in %s)", results.TotalFound, key.Query.Text, uc.ttl)
}

// SweepExpired deletes every expired entry and returns how many were removed.
func (uc *SearchCacheUsecase) SweepExpired(ctx context.Context) int64 {
	n, err := uc.repo.DeleteExpired(ctx, uc.now())
	if err != nil {
		uc.log.WithContext(ctx).Errorf("cache sweep failed: %v", err)
		return 0
	}
	if n > 0 {
		uc.log.WithContext(ctx).Infof("swept %d expired cache entries", n)
	}
	return n
}

// Invalidate deletes the entry of q. It reports false if nothing was deleted.
func (uc *SearchCacheUsecase) Invalidate(ctx context.Context, q SearchQuery) bool {
	fp := uc.Key(ctx, q).Fingerprint
	ok, err := uc.repo.Delete(ctx, fp)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("cache invalidation failed for %q: %v", q.Text, err)
		return false
	}
	if ok {
		uc.log.WithContext(ctx).Infof("invalidated cache for %q", q.Text)
	}
	return ok
}

// ClearAll deletes every entry and resets the prefilter.
func (uc *SearchCacheUsecase) ClearAll(ctx context.Context) int64 {
	n, err := uc.repo.DeleteAll(ctx)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("cache clear failed: %v", err)
		return 0
	}
	if uc.prefilter != nil {
		if err := uc.prefilter.Reset(ctx); err != nil {
			uc.log.WithContext(ctx).Warnf("prefilter reset failed: %v", err)
		}
	}
	uc.log.WithContext(ctx).Infof("cleared cache (%d entries)", n)
	return n
}

// Stats returns counts and the most used entries.
func (uc *SearchCacheUsecase) Stats(ctx context.Context) (*CacheStats, error) {
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	expired, err := uc.repo.CountExpired(ctx, uc.now())
	if err != nil {
		return nil, err
	}
	top, err := uc.repo.TopByHits(ctx, topEntriesLimit)
	if err != nil {
		return nil, err
	}
	return &CacheStats{
		TotalEntries:   total,
		ActiveEntries:  total - expired,
		ExpiredEntries: expired,
		TopEntries:     top,
	}, nil
}

// SuggestSimilar returns up to five distinct cached queries sharing a keyword with raw.
func (uc *SearchCacheUsecase) SuggestSimilar(ctx context.Context, raw string) []string {
	keywords := uc.extractor.Extract(ctx, raw)
	if len(keywords) == 0 {
		return []string{}
	}

	queries, err := uc.repo.FindSimilarQueries(ctx, keywords, uc.now(), suggestionsLimit)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("similar query lookup failed: %v", err)
		return []string{}
	}
	if len(queries) > suggestionsLimit {
		queries = queries[:suggestionsLimit]
	}
	return queries
}

// List returns one page of entries, newest first, and the total count.
func (uc *SearchCacheUsecase) List(ctx context.Context, limit, offset int) ([]*CacheEntry, int64, error) {
	entries, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// RebuildPrefilter repopulates the prefilter from the store. A shared
// prefilter is only added to; any other is reset first.
func (uc *SearchCacheUsecase) RebuildPrefilter(ctx context.Context) (int, error) {
	if uc.prefilter == nil {
		return 0, nil
	}
	uc.log.WithContext(ctx).Info("rebuilding cache prefilter from database")

	fps, err := uc.repo.ListFingerprints(ctx)
	if err != nil {
		return 0, err
	}
	if shared, ok := uc.prefilter.(SharedPrefilter); ok {
		if err := shared.Rebuild(ctx, fps); err != nil {
			return 0, err
		}
	} else {
		if err := uc.prefilter.Reset(ctx); err != nil {
			return 0, err
		}
		for _, fp := range fps {
			if err := uc.prefilter.Add(ctx, fp); err != nil {
				return 0, err
			}
		}
	}

	uc.log.WithContext(ctx).Infof("rebuilt cache prefilter with %d fingerprints", len(fps))
	return len(fps), nil
}
