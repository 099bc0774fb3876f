package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-kratos/kratos/v2/errors"

	"companysearch/internal/biz"
)

const (
	minSuggestionQueryLen = 2
	maxSuggestionLimit    = 10
	maxSearchLimit        = 100
)

// SearchRequest is bound from the /api/search query string.
type SearchRequest struct {
	Q        string `json:"q"`
	Hashtags string `json:"hashtags"`
	Networks string `json:"networks"`
	Lang     string `json:"lang"`
	Limit    int    `json:"limit"`
}

// Query converts the request into a biz query.
func (r *SearchRequest) Query() biz.SearchQuery {
	return biz.SearchQuery{
		Text:     strings.TrimSpace(r.Q),
		Hashtags: splitList(r.Hashtags),
		Networks: splitList(r.Networks),
		Language: strings.TrimSpace(r.Lang),
	}
}

// SearchReply is the JSON body of /api/search.
type SearchReply struct {
	RequestID      string              `json:"requestId"`
	SearchQuery    string              `json:"searchQuery"`
	Companies      []*biz.Company      `json:"companies"`
	TotalFound     int                 `json:"totalFound"`
	Source         string              `json:"source"`
	FromCache      bool                `json:"fromCache"`
	CacheSource    string              `json:"cacheSource,omitempty"`
	HitCount       int64               `json:"hitCount,omitempty"`
	SimilarQueries []string            `json:"similarQueries"`
	Errors         []biz.ProviderError `json:"errors,omitempty"`
}

// SuggestionsRequest is bound from the /api/search/suggestions query string.
type SuggestionsRequest struct {
	Q     string `json:"q"`
	Limit int    `json:"limit"`
}

// SuggestionsReply carries generated suggestions and similar cached queries.
type SuggestionsReply struct {
	Query          string   `json:"query"`
	Suggestions    []string `json:"suggestions"`
	Count          int      `json:"count"`
	SimilarQueries []string `json:"similarQueries"`
	Message        string   `json:"message,omitempty"`
}

// SearchService serves the company search endpoints.
type SearchService struct {
	directory *biz.DirectoryUsecase
	suggest   *biz.SuggestUsecase
}

// NewSearchService new a search service.
func NewSearchService(directory *biz.DirectoryUsecase, suggest *biz.SuggestUsecase) *SearchService {
	return &SearchService{directory: directory, suggest: suggest}
}

// Search runs a directory search.
func (s *SearchService) Search(ctx context.Context, in *SearchRequest) (*SearchReply, error) {
	if in.Limit < 0 || in.Limit > maxSearchLimit {
		return nil, errors.BadRequest("INVALID_LIMIT", "limit must be between 0 and 100")
	}
	resp, err := s.directory.Search(ctx, biz.SearchRequest{Query: in.Query(), Limit: in.Limit})
	if err != nil {
		return nil, err
	}
	reply := &SearchReply{
		RequestID:      resp.RequestID,
		SearchQuery:    resp.Query.Text,
		Companies:      resp.Companies,
		TotalFound:     resp.TotalFound,
		Source:         resp.Source,
		FromCache:      resp.FromCache,
		HitCount:       resp.HitCount,
		SimilarQueries: resp.SimilarQueries,
		Errors:         resp.Errors,
	}
	if resp.FromCache {
		reply.CacheSource = resp.Source
	}
	return reply, nil
}

// Suggestions returns query ideas for q and the popular cached queries
// sharing a keyword with it.
func (s *SearchService) Suggestions(ctx context.Context, in *SuggestionsRequest) (*SuggestionsReply, error) {
	if in.Limit < 0 || in.Limit > maxSuggestionLimit {
		return nil, errors.BadRequest("INVALID_LIMIT", "limit must be between 0 and 10")
	}
	q := strings.TrimSpace(in.Q)
	if utf8.RuneCountInString(q) < minSuggestionQueryLen {
		return &SuggestionsReply{
			Query:          q,
			Suggestions:    []string{},
			SimilarQueries: []string{},
			Message:        "query too short (minimum 2 characters)",
		}, nil
	}
	got := s.suggest.Suggest(ctx, q, in.Limit)
	return &SuggestionsReply{
		Query:          q,
		Suggestions:    got.Generated,
		Count:          len(got.Generated),
		SimilarQueries: got.Similar,
	}, nil
}
