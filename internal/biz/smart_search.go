package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/conf"
	"companysearch/internal/pkg/query"
)

// DefaultSmartLimit caps smart search results.
const DefaultSmartLimit = 30

// CompanyRepo is the company store.
type CompanyRepo interface {
	// SearchByKeywords matches any keyword as a case-insensitive substring of
	// name, bio, location or activity domain, or as an exact hashtag. Results
	// are ordered by followers then gabon score, both descending.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*Company, error)
	// SearchByText matches the whole text the same way, ordered by gabon
	// score then creation time, both descending.
	SearchByText(ctx context.Context, text string, limit int) ([]*Company, error)
	// UpsertMany inserts or refreshes companies keyed by platform and external id.
	UpsertMany(ctx context.Context, companies []*Company) (int, error)
}

// SmartSearchUsecase is the recall-biased keyword search over the company store.
type SmartSearchUsecase struct {
	repo      CompanyRepo
	extractor query.KeywordExtractor
	limit     int
	log       *log.Helper
}

// NewSmartSearchUsecase new a smart search usecase.
func NewSmartSearchUsecase(c *conf.Cache, repo CompanyRepo, extractor query.KeywordExtractor, logger log.Logger) *SmartSearchUsecase {
	limit := DefaultSmartLimit
	if c != nil && c.SmartLimit > 0 {
		limit = c.SmartLimit
	}
	return &SmartSearchUsecase{
		repo:      repo,
		extractor: extractor,
		limit:     limit,
		log:       log.NewHelper(log.With(logger, "module", "biz/smart_search")),
	}
}

// Search returns companies matching any keyword of raw. limit <= 0 selects
// the configured default. Store errors yield an empty slice.
func (uc *SmartSearchUsecase) Search(ctx context.Context, raw string, limit int) []*Company {
	if limit <= 0 {
		limit = uc.limit
	}
	keywords := uc.extractor.Extract(ctx, raw)
	if len(keywords) == 0 {
		return []*Company{}
	}
	uc.log.WithContext(ctx).Debugf("smart search %q with keywords: %s", raw, strings.Join(keywords, ", "))

	companies, err := uc.repo.SearchByKeywords(ctx, keywords, limit)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("smart search failed: %v", err)
		return []*Company{}
	}
	uc.log.WithContext(ctx).Infof("smart search found %d companies for %q", len(companies), raw)
	return companies
}

// SearchText runs the plain whole-text search used when no keyword matched.
func (uc *SmartSearchUsecase) SearchText(ctx context.Context, raw string, limit int) []*Company {
	if limit <= 0 {
		limit = uc.limit
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return []*Company{}
	}
	companies, err := uc.repo.SearchByText(ctx, text, limit)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("text search failed: %v", err)
		return []*Company{}
	}
	return companies
}
