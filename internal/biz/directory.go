package biz

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"companysearch/internal/conf"
)

const defaultProviderTimeout = 15 * time.Second

// CompanyProvider is an external company source.
type CompanyProvider interface {
	Name() string
	Search(ctx context.Context, text string, limit int) ([]*Company, error)
}

// SearchRequest is a directory search.
type SearchRequest struct {
	Query SearchQuery
	Limit int
}

// ProviderError records why an external source contributed nothing.
type ProviderError struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// SearchResponse is the outcome of a directory search.
type SearchResponse struct {
	RequestID      string
	Query          SearchQuery
	Companies      []*Company
	TotalFound     int
	Source         string
	FromCache      bool
	HitCount       int64
	SimilarQueries []string
	Errors         []ProviderError
}

// DirectoryUsecase runs a search through the cache, the company store and
// the external providers, in that order.
type DirectoryUsecase struct {
	cache     *SearchCacheUsecase
	smart     *SmartSearchUsecase
	companies CompanyRepo
	providers []CompanyProvider
	timeout   time.Duration
	limit     int
	log       *log.Helper
}

// NewDirectoryUsecase new a directory usecase.
func NewDirectoryUsecase(
	c *conf.Providers,
	cache *SearchCacheUsecase,
	smart *SmartSearchUsecase,
	companies CompanyRepo,
	providers []CompanyProvider,
	logger log.Logger,
) *DirectoryUsecase {
	uc := &DirectoryUsecase{
		cache:     cache,
		smart:     smart,
		companies: companies,
		providers: providers,
		timeout:   defaultProviderTimeout,
		log:       log.NewHelper(log.With(logger, "module", "biz/directory")),
	}
	if c != nil {
		uc.timeout = c.Timeout.Or(defaultProviderTimeout)
		uc.limit = c.Limit
	}
	return uc
}

// Search answers req. Only an empty query is reported as an error.
func (uc *DirectoryUsecase) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query.Text) == "" {
		return nil, ErrInvalidQuery
	}
	resp := &SearchResponse{
		RequestID:      uuid.NewString(),
		Query:          req.Query,
		Companies:      []*Company{},
		SimilarQueries: []string{},
	}

	key := uc.cache.Key(ctx, req.Query)
	if hit, ok := uc.cache.GetKey(ctx, key); ok {
		companies := hit.Companies
		if req.Limit > 0 && len(companies) > req.Limit {
			companies = companies[:req.Limit]
		}
		resp.Companies = companies
		resp.TotalFound = hit.TotalFound
		resp.Source = hit.Source
		resp.FromCache = true
		resp.HitCount = hit.HitCount
		return resp, nil
	}

	var (
		g     errgroup.Group
		smart []*Company
	)
	g.Go(func() error {
		resp.SimilarQueries = uc.cache.SuggestSimilar(ctx, req.Query.Text)
		return nil
	})
	g.Go(func() error {
		smart = uc.smart.Search(ctx, req.Query.Text, req.Limit)
		return nil
	})
	_ = g.Wait()

	if len(smart) > 0 {
		uc.respond(ctx, resp, key, smart, SourceSmartDatabase)
		return resp, nil
	}

	if found := uc.smart.SearchText(ctx, req.Query.Text, req.Limit); len(found) > 0 {
		uc.respond(ctx, resp, key, found, SourceDatabase)
		return resp, nil
	}

	external, sources, errs := uc.searchProviders(ctx, req.Query.Text, req.Limit)
	resp.Errors = errs
	if len(external) == 0 {
		resp.Source = SourceExternal
		return resp, nil
	}
	if _, err := uc.companies.UpsertMany(ctx, external); err != nil {
		uc.log.WithContext(ctx).Warnf("failed to store provider results: %v", err)
	}
	uc.respond(ctx, resp, key, external, SourceExternal+":"+strings.Join(sources, ","))
	return resp, nil
}

func (uc *DirectoryUsecase) respond(ctx context.Context, resp *SearchResponse, key CacheKey, companies []*Company, source string) {
	resp.Companies = companies
	resp.TotalFound = len(companies)
	resp.Source = source
	uc.cache.PutKey(ctx, key, SearchResults{
		Companies:  companies,
		TotalFound: len(companies),
		Source:     source,
	})
}

// searchProviders queries every provider concurrently and keeps the
// Gabon-related results, deduplicated and ordered by gabon score.
func (uc *DirectoryUsecase) searchProviders(ctx context.Context, text string, limit int) ([]*Company, []string, []ProviderError) {
	if limit <= 0 {
		limit = uc.limit
	}
	if limit <= 0 {
		limit = DefaultSmartLimit
	}

	var (
		mu      sync.Mutex
		results = make([][]*Company, len(uc.providers))
		errs    []ProviderError
		g       errgroup.Group
	)
	for i, p := range uc.providers {
		i, p := i, p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			found, err := p.Search(pctx, text, limit)
			if err != nil {
				uc.log.WithContext(ctx).Warnf("provider %s failed: %v", p.Name(), err)
				mu.Lock()
				errs = append(errs, ProviderError{Provider: p.Name(), Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	var (
		out     []*Company
		sources []string
		seen    = make(map[string]struct{})
	)
	for i, found := range results {
		contributed := false
		for _, c := range found {
			if !IsGabonRelated(companyText(c)) {
				continue
			}
			id := c.Platform + "/" + c.ExternalID
			if c.ExternalID == "" {
				id = c.Platform + "/" + c.ProfileURL + "/" + c.Name
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			scoreCompany(c)
			out = append(out, c)
			contributed = true
		}
		if contributed {
			sources = append(sources, uc.providers[i].Name())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GabonScore > out[j].GabonScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Provider < errs[j].Provider })
	return out, sources, errs
}
