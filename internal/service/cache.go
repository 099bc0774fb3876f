package service

import (
	"context"
	"time"

	"companysearch/internal/biz"
	"companysearch/internal/pkg/pagination"
)

// CacheEntryReply is a cache entry without its result payload.
type CacheEntryReply struct {
	Fingerprint    string     `json:"fingerprint"`
	Query          string     `json:"query"`
	Hashtags       []string   `json:"hashtags"`
	Networks       []string   `json:"networks"`
	Lang           string     `json:"lang"`
	TotalFound     int        `json:"totalFound"`
	Source         string     `json:"source"`
	HitCount       int64      `json:"hitCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
	Expired        bool       `json:"expired"`
}

// CacheStatsReply is the JSON body of /api/cache/stats.
type CacheStatsReply struct {
	TotalEntries   int64              `json:"totalEntries"`
	ActiveEntries  int64              `json:"activeEntries"`
	ExpiredEntries int64              `json:"expiredEntries"`
	TTLSeconds     int64              `json:"ttlSeconds"`
	TopEntries     []*CacheEntryReply `json:"topEntries"`
}

// ListEntriesRequest is bound from the /api/cache/entries query string.
type ListEntriesRequest struct {
	Page     string `json:"page"`
	PageSize string `json:"page_size"`
}

// CountReply reports how many entries an operation removed.
type CountReply struct {
	Deleted int64 `json:"deleted"`
}

// InvalidateReply reports whether an entry was removed.
type InvalidateReply struct {
	Invalidated bool `json:"invalidated"`
}

// CacheService serves the cache administration endpoints.
type CacheService struct {
	cache *biz.SearchCacheUsecase
	now   func() time.Time
}

// NewCacheService new a cache service.
func NewCacheService(cache *biz.SearchCacheUsecase) *CacheService {
	return &CacheService{cache: cache, now: time.Now}
}

func (s *CacheService) toEntryReply(e *biz.CacheEntry) *CacheEntryReply {
	return &CacheEntryReply{
		Fingerprint:    e.Fingerprint,
		Query:          e.Query,
		Hashtags:       e.Hashtags,
		Networks:       e.Networks,
		Lang:           e.Language,
		TotalFound:     e.TotalFound,
		Source:         e.Source,
		HitCount:       e.HitCount,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		ExpiresAt:      e.ExpiresAt,
		LastAccessedAt: e.LastAccessedAt,
		Expired:        e.Expired(s.now()),
	}
}

func (s *CacheService) toEntryReplies(entries []*biz.CacheEntry) []*CacheEntryReply {
	out := make([]*CacheEntryReply, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.toEntryReply(e))
	}
	return out
}

// Stats returns cache counts and the most used entries.
func (s *CacheService) Stats(ctx context.Context) (*CacheStatsReply, error) {
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &CacheStatsReply{
		TotalEntries:   stats.TotalEntries,
		ActiveEntries:  stats.ActiveEntries,
		ExpiredEntries: stats.ExpiredEntries,
		TTLSeconds:     int64(s.cache.TTL().Seconds()),
		TopEntries:     s.toEntryReplies(stats.TopEntries),
	}, nil
}

// ListEntries returns one page of entries, most recently written first.
func (s *CacheService) ListEntries(ctx context.Context, in *ListEntriesRequest) (*pagination.Response[*CacheEntryReply], error) {
	p := pagination.ParsePage(in.Page, in.PageSize)
	entries, total, err := s.cache.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return pagination.BuildResponse(s.toEntryReplies(entries), p, total), nil
}

// Sweep deletes expired entries now.
func (s *CacheService) Sweep(ctx context.Context) (*CountReply, error) {
	return &CountReply{Deleted: s.cache.SweepExpired(ctx)}, nil
}

// Invalidate deletes the entry of one query.
func (s *CacheService) Invalidate(ctx context.Context, in *biz.SearchQuery) (*InvalidateReply, error) {
	if in.Text == "" {
		return nil, biz.ErrInvalidQuery
	}
	return &InvalidateReply{Invalidated: s.cache.Invalidate(ctx, *in)}, nil
}

// Clear deletes every entry.
func (s *CacheService) Clear(ctx context.Context) (*CountReply, error) {
	return &CountReply{Deleted: s.cache.ClearAll(ctx)}, nil
}
