package biz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companysearch/internal/pkg/query"
)

type directoryFixture struct {
	uc        *DirectoryUsecase
	cache     *SearchCacheUsecase
	companies *fakeCompanyRepo
	cacheRepo *fakeCacheRepo
}

func newDirectoryFixture(t *testing.T, companies []*Company, providers ...CompanyProvider) *directoryFixture {
	t.Helper()
	cacheRepo := newFakeCacheRepo()
	cache, _ := newTestCache(t, cacheRepo, nil)
	repo := &fakeCompanyRepo{companies: companies}
	smart := NewSmartSearchUsecase(nil, repo, query.RuleExtractor{}, log.DefaultLogger)
	return &directoryFixture{
		uc:        NewDirectoryUsecase(nil, cache, smart, repo, providers, log.DefaultLogger),
		cache:     cache,
		companies: repo,
		cacheRepo: cacheRepo,
	}
}

func TestDirectory_EmptyQuery(t *testing.T) {
	f := newDirectoryFixture(t, nil)

	_, err := f.uc.Search(context.Background(), SearchRequest{Query: SearchQuery{Text: "   "}})
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestDirectory_SmartSearchThenCache(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t, seedCompanies())
	req := SearchRequest{Query: SearchQuery{Text: "restaurant à lalala"}}

	first, err := f.uc.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, SourceSmartDatabase, first.Source)
	assert.Equal(t, 2, first.TotalFound)
	assert.NotEmpty(t, first.RequestID)

	second, err := f.uc.Search(ctx, SearchRequest{Query: SearchQuery{Text: "Restaurant Lalala"}})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "cache (smart_database)", second.Source)
	assert.Equal(t, int64(1), second.HitCount)
	assert.Equal(t, first.TotalFound, second.TotalFound)
}

func TestDirectory_CacheHitHonoursLimit(t *testing.T) {
	ctx := context.Background()
	var companies []*Company
	for i := 0; i < 20; i++ {
		companies = append(companies, &Company{Name: fmt.Sprintf("Restaurant %d", i), Location: "Libreville"})
	}
	f := newDirectoryFixture(t, companies)

	first, err := f.uc.Search(ctx, SearchRequest{Query: SearchQuery{Text: "restaurant"}, Limit: 20})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	require.Len(t, first.Companies, 20)

	second, err := f.uc.Search(ctx, SearchRequest{Query: SearchQuery{Text: "restaurant"}, Limit: 3})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	require.Len(t, second.Companies, 3)
	assert.Equal(t, first.Companies[:3], second.Companies)
	assert.Equal(t, 20, second.TotalFound)

	unbounded, err := f.uc.Search(ctx, SearchRequest{Query: SearchQuery{Text: "restaurant"}})
	require.NoError(t, err)
	assert.Len(t, unbounded.Companies, 20)
}

func TestDirectory_SuggestsSimilarOnMiss(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t, seedCompanies())
	f.cache.Put(ctx, SearchQuery{Text: "restaurant libreville"}, results(SourceDatabase, "A"))

	resp, err := f.uc.Search(ctx, SearchRequest{Query: SearchQuery{Text: "restaurant owendo"}})
	require.NoError(t, err)
	assert.False(t, resp.FromCache)
	assert.Equal(t, []string{"restaurant libreville"}, resp.SimilarQueries)
}

func TestDirectory_FallsBackToProviders(t *testing.T) {
	ctx := context.Background()
	google := &fakeProvider{name: "google_places", companies: []*Company{
		{Name: "Pizzeria Roma", Platform: "google_places", ExternalID: "p1", Location: "Rome, Italy"},
		{Name: "Boulangerie du Centre", Platform: "google_places", ExternalID: "p2", Location: "Libreville, Gabon"},
	}}
	facebook := &fakeProvider{name: "facebook", err: errors.New("token expired")}
	f := newDirectoryFixture(t, nil, google, facebook)
	req := SearchRequest{Query: SearchQuery{Text: "boulangerie"}}

	resp, err := f.uc.Search(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Companies, 1)
	assert.Equal(t, "Boulangerie du Centre", resp.Companies[0].Name)
	assert.Equal(t, 35, resp.Companies[0].GabonScore)
	assert.Equal(t, "external:google_places", resp.Source)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "facebook", resp.Errors[0].Provider)
	assert.Len(t, f.companies.upserted, 1)

	again, err := f.uc.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.Equal(t, "cache (external:google_places)", again.Source)
	assert.Equal(t, 1, google.calls)
}

func TestDirectory_EmptyResultsAreNotCached(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{name: "facebook"}
	f := newDirectoryFixture(t, nil, provider)

	resp, err := f.uc.Search(ctx, SearchRequest{Query: SearchQuery{Text: "introuvable"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Companies)
	assert.Equal(t, SourceExternal, resp.Source)

	n, err := f.cacheRepo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
