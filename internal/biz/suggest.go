package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"

	"companysearch/internal/pkg/query"
)

// Suggestions are the two kinds of hints offered for a partial query.
type Suggestions struct {
	// Generated are fresh query ideas from the suggester.
	Generated []string
	// Similar are popular cached queries sharing a keyword.
	Similar []string
}

// SuggestUsecase combines generated suggestions with similar cached queries.
type SuggestUsecase struct {
	suggester query.Suggester
	cache     *SearchCacheUsecase
	log       *log.Helper
}

// NewSuggestUsecase new a suggest usecase.
func NewSuggestUsecase(suggester query.Suggester, cache *SearchCacheUsecase, logger log.Logger) *SuggestUsecase {
	if suggester == nil {
		suggester = query.RuleSuggester{}
	}
	return &SuggestUsecase{
		suggester: suggester,
		cache:     cache,
		log:       log.NewHelper(log.With(logger, "module", "biz/suggest")),
	}
}

// Suggest runs both lookups concurrently. Neither can fail.
func (uc *SuggestUsecase) Suggest(ctx context.Context, raw string, limit int) *Suggestions {
	out := &Suggestions{Generated: []string{}, Similar: []string{}}
	var g errgroup.Group
	g.Go(func() error {
		if s := uc.suggester.Suggest(ctx, raw, limit); s != nil {
			out.Generated = s
		}
		return nil
	})
	g.Go(func() error {
		out.Similar = uc.cache.SuggestSimilar(ctx, raw)
		return nil
	})
	_ = g.Wait()
	uc.log.WithContext(ctx).Debugf("%d suggestions and %d similar queries for %q", len(out.Generated), len(out.Similar), raw)
	return out
}
