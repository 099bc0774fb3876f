package biz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companysearch/internal/conf"
	"companysearch/internal/pkg/query"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, repo SearchCacheRepo, pf Prefilter) (*SearchCacheUsecase, *testClock) {
	t.Helper()
	uc := NewSearchCacheUsecase(
		&conf.Cache{TTL: conf.Duration{Duration: time.Hour}},
		repo,
		query.NewKeyBuilder(query.RuleNormalizer{}),
		query.RuleExtractor{},
		pf,
		log.DefaultLogger,
	)
	clock := newTestClock()
	uc.SetClock(clock.Now)
	return uc, clock
}

func results(source string, names ...string) SearchResults {
	companies := make([]*Company, 0, len(names))
	for _, n := range names {
		companies = append(companies, &Company{Name: n, Hashtags: []string{}})
	}
	return SearchResults{Companies: companies, TotalFound: len(companies), Source: source}
}

func TestSearchCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)
	q := SearchQuery{Text: "restaurant à lalala"}

	_, ok := uc.Get(ctx, q)
	assert.False(t, ok)

	uc.Put(ctx, q, results(SourceSmartDatabase, "Chez Tantine"))

	hit, ok := uc.Get(ctx, SearchQuery{Text: "Restaurant Lalala"})
	require.True(t, ok)
	assert.Equal(t, "cache (smart_database)", hit.Source)
	assert.Equal(t, 1, hit.TotalFound)
	assert.Equal(t, "Chez Tantine", hit.Companies[0].Name)
	assert.Equal(t, int64(1), hit.HitCount)
}

func TestSearchCache_HitCountIncrements(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)
	q := SearchQuery{Text: "coiffeur glass"}
	uc.Put(ctx, q, results(SourceDatabase, "Salon A"))

	for want := int64(1); want <= 3; want++ {
		hit, ok := uc.Get(ctx, q)
		require.True(t, ok)
		assert.Equal(t, want, hit.HitCount)
	}
}

func TestSearchCache_ExpiredEntryIsEvicted(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCacheRepo()
	uc, clock := newTestCache(t, repo, nil)
	q := SearchQuery{Text: "garage owendo"}
	uc.Put(ctx, q, results(SourceDatabase, "Garage"))

	clock.Advance(time.Hour)
	_, ok := uc.Get(ctx, q)
	assert.True(t, ok, "entry expiring exactly now is still live")

	clock.Advance(time.Second)
	_, ok = uc.Get(ctx, q)
	assert.False(t, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "expired entry must be deleted on read")
}

func TestSearchCache_UpsertKeepsHitCountAndRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCacheRepo()
	uc, clock := newTestCache(t, repo, nil)
	q := SearchQuery{Text: "pharmacie libreville"}

	uc.Put(ctx, q, results(SourceDatabase, "A"))
	_, _ = uc.Get(ctx, q)
	_, _ = uc.Get(ctx, q)

	clock.Advance(30 * time.Minute)
	uc.Put(ctx, q, results(SourceSmartDatabase, "B", "C"))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entry, err := repo.Get(ctx, uc.Key(ctx, q).Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, int64(2), entry.HitCount)
	assert.Equal(t, 2, entry.TotalFound)
	assert.Equal(t, SourceSmartDatabase, entry.Source)
	assert.Equal(t, clock.Now().Add(time.Hour), entry.ExpiresAt)
	assert.True(t, entry.ExpiresAt.After(entry.CreatedAt))

	clock.Advance(45 * time.Minute)
	hit, ok := uc.Get(ctx, q)
	require.True(t, ok, "refreshed entry outlives the original expiry")
	assert.Equal(t, int64(3), hit.HitCount)
}

func TestSearchCache_FacetsChangeFingerprint(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)

	uc.Put(ctx, SearchQuery{Text: "boutique", Hashtags: []string{"mode"}}, results(SourceDatabase, "A"))

	_, ok := uc.Get(ctx, SearchQuery{Text: "boutique"})
	assert.False(t, ok)
	_, ok = uc.Get(ctx, SearchQuery{Text: "boutique", Hashtags: []string{"MODE"}, Language: "fr"})
	assert.True(t, ok)
}

func TestSearchCache_DegradesWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, brokenCacheRepo{}, nil)
	q := SearchQuery{Text: "hotel"}

	assert.NotPanics(t, func() { uc.Put(ctx, q, results(SourceDatabase, "A")) })
	_, ok := uc.Get(ctx, q)
	assert.False(t, ok)
	assert.Zero(t, uc.SweepExpired(ctx))
	assert.Zero(t, uc.ClearAll(ctx))
	assert.False(t, uc.Invalidate(ctx, q))
	assert.Empty(t, uc.SuggestSimilar(ctx, "hotel libreville"))

	_, err := uc.Stats(ctx)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSearchCache_SweepInvalidateClear(t *testing.T) {
	ctx := context.Background()
	uc, clock := newTestCache(t, newFakeCacheRepo(), nil)

	uc.Put(ctx, SearchQuery{Text: "old one"}, results(SourceDatabase, "A"))
	clock.Advance(2 * time.Hour)
	uc.Put(ctx, SearchQuery{Text: "fresh one"}, results(SourceDatabase, "B"))
	uc.Put(ctx, SearchQuery{Text: "fresh two"}, results(SourceDatabase, "C"))

	assert.Equal(t, int64(1), uc.SweepExpired(ctx))
	assert.Zero(t, uc.SweepExpired(ctx))

	assert.True(t, uc.Invalidate(ctx, SearchQuery{Text: "fresh one"}))
	assert.False(t, uc.Invalidate(ctx, SearchQuery{Text: "fresh one"}))

	assert.Equal(t, int64(1), uc.ClearAll(ctx))
	_, ok := uc.Get(ctx, SearchQuery{Text: "fresh two"})
	assert.False(t, ok)
}

func TestSearchCache_HitCountRestartsAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)
	q := SearchQuery{Text: "banque"}

	uc.Put(ctx, q, results(SourceDatabase, "A"))
	_, _ = uc.Get(ctx, q)
	_, _ = uc.Get(ctx, q)
	require.True(t, uc.Invalidate(ctx, q))

	uc.Put(ctx, q, results(SourceDatabase, "A"))
	hit, ok := uc.Get(ctx, q)
	require.True(t, ok)
	assert.Equal(t, int64(1), hit.HitCount)
}

func TestSearchCache_Stats(t *testing.T) {
	ctx := context.Background()
	uc, clock := newTestCache(t, newFakeCacheRepo(), nil)

	uc.Put(ctx, SearchQuery{Text: "expired"}, results(SourceDatabase, "A"))
	clock.Advance(2 * time.Hour)
	for i, text := range []string{"a1", "b2", "c3"} {
		q := SearchQuery{Text: text}
		uc.Put(ctx, q, results(SourceDatabase, "X"))
		for j := 0; j <= i; j++ {
			_, _ = uc.Get(ctx, q)
		}
	}

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalEntries)
	assert.Equal(t, int64(1), stats.ExpiredEntries)
	assert.Equal(t, int64(3), stats.ActiveEntries)
	require.Len(t, stats.TopEntries, 4)
	assert.Equal(t, "c3", stats.TopEntries[0].Query)
	assert.Equal(t, int64(3), stats.TopEntries[0].HitCount)

	again, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.TopEntries[0].HitCount, again.TopEntries[0].HitCount, "stats must not count as hits")
}

func TestSearchCache_SuggestSimilar(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCacheRepo()
	uc, clock := newTestCache(t, repo, nil)

	uc.Put(ctx, SearchQuery{Text: "restaurant ancien"}, results(SourceDatabase, "A"))
	clock.Advance(2 * time.Hour)

	popular := SearchQuery{Text: "Restaurant libreville"}
	uc.Put(ctx, popular, results(SourceDatabase, "A"))
	uc.Put(ctx, SearchQuery{Text: "restaurant owendo"}, results(SourceDatabase, "B"))
	uc.Put(ctx, SearchQuery{Text: "garage akanda"}, results(SourceDatabase, "C"))
	_, _ = uc.Get(ctx, popular)
	_, _ = uc.Get(ctx, popular)

	touches := repo.touches
	got := uc.SuggestSimilar(ctx, "cherche un restaurant")
	assert.Equal(t, []string{"Restaurant libreville", "restaurant owendo"}, got)
	assert.Equal(t, touches, repo.touches, "suggestions are read-only")

	hit, ok := uc.Get(ctx, popular)
	require.True(t, ok)
	assert.Equal(t, int64(3), hit.HitCount)

	assert.Empty(t, uc.SuggestSimilar(ctx, "le la de"))
}

func TestSearchCache_SuggestSimilarCapsAtFive(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)
	for _, city := range []string{"libreville", "owendo", "akanda", "ntoum", "oyem", "moanda", "bitam"} {
		uc.Put(ctx, SearchQuery{Text: "hotel " + city}, results(SourceDatabase, "A"))
	}

	assert.Len(t, uc.SuggestSimilar(ctx, "hotel"), 5)
}

func TestSearchCache_SuggestSimilarDistinctQueries(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)
	for _, tag := range []string{"luxe", "budget", "piscine", "plage"} {
		q := SearchQuery{Text: "hotel libreville", Hashtags: []string{tag}}
		uc.Put(ctx, q, results(SourceDatabase, "A"))
		for i := 0; i < 3; i++ {
			_, ok := uc.Get(ctx, q)
			require.True(t, ok)
		}
	}
	for _, city := range []string{"oyem", "owendo", "akanda", "ntoum"} {
		uc.Put(ctx, SearchQuery{Text: "hotel " + city}, results(SourceDatabase, "B"))
	}

	got := uc.SuggestSimilar(ctx, "hotel")
	require.Len(t, got, 5)
	assert.Equal(t, "hotel libreville", got[0])
	assert.ElementsMatch(t, []string{"hotel libreville", "hotel oyem", "hotel owendo", "hotel akanda", "hotel ntoum"}, got)
}

func TestSearchCache_Prefilter(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCacheRepo()
	pf := newFakePrefilter()
	uc, _ := newTestCache(t, repo, pf)
	q := SearchQuery{Text: "spa libreville"}

	uc.Put(ctx, q, results(SourceDatabase, "A"))
	_, ok := uc.Get(ctx, q)
	assert.True(t, ok)

	other := SearchQuery{Text: "boulangerie"}
	require.NoError(t, repo.Upsert(ctx, &CacheEntry{
		Fingerprint: uc.Key(ctx, other).Fingerprint,
		Query:       other.Text,
		ExpiresAt:   time.Now().Add(24 * 365 * time.Hour),
	}))
	_, ok = uc.Get(ctx, other)
	assert.False(t, ok, "prefilter miss skips the store")

	pf.err = errStoreDown
	_, ok = uc.Get(ctx, other)
	assert.True(t, ok, "prefilter errors fall through to the store")
	pf.err = nil

	n, err := uc.RebuildPrefilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, ok = uc.Get(ctx, other)
	assert.True(t, ok)

	uc.ClearAll(ctx)
	may, err := pf.MayContain(ctx, uc.Key(ctx, q).Fingerprint)
	require.NoError(t, err)
	assert.False(t, may)
}

func TestSearchCache_List(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestCache(t, newFakeCacheRepo(), nil)
	for _, text := range []string{"a", "b", "c"} {
		uc.Put(ctx, SearchQuery{Text: text}, results(SourceDatabase, "X"))
	}

	entries, total, err := uc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)

	entries, _, err = uc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSearchCache_RebuildSharedPrefilterKeepsBits(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCacheRepo()
	pf := &fakeSharedPrefilter{fakePrefilter: newFakePrefilter()}
	uc, _ := newTestCache(t, repo, pf)

	q := SearchQuery{Text: "spa libreville"}
	uc.Put(ctx, q, results(SourceDatabase, "A"))
	require.NoError(t, pf.Add(ctx, "written-by-another-instance"))

	n, err := uc.RebuildPrefilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, pf.resets)
	assert.Equal(t, []string{uc.Key(ctx, q).Fingerprint}, pf.rebuilt)

	ok, err := pf.MayContain(ctx, "written-by-another-instance")
	require.NoError(t, err)
	assert.True(t, ok)

	uc.ClearAll(ctx)
	assert.Equal(t, 1, pf.resets)
}
