package biz

import (
	"time"

	"github.com/go-kratos/kratos/v2/errors"

	"companysearch/internal/pkg/query"
)

var (
	// ErrCacheEntryNotFound is returned by repositories when a fingerprint has no live row.
	ErrCacheEntryNotFound = errors.NotFound("CACHE_ENTRY_NOT_FOUND", "cache entry not found")
	// ErrInvalidQuery is returned when a request carries no usable query text.
	ErrInvalidQuery = errors.BadRequest("INVALID_QUERY", "query text is required")
)

// Cache entry sources.
const (
	SourceSmartDatabase = "smart_database"
	SourceDatabase      = "database"
	SourceExternal      = "external"
)

// SearchQuery is one directory search request.
type SearchQuery struct {
	Text     string   `json:"query"`
	Hashtags []string `json:"hashtags,omitempty"`
	Networks []string `json:"networks,omitempty"`
	Language string   `json:"lang,omitempty"`
}

// Facets returns the fingerprint inputs of q.
func (q SearchQuery) Facets() query.Facets {
	return query.Facets{
		Text:     q.Text,
		Hashtags: q.Hashtags,
		Networks: q.Networks,
		Language: q.Language,
	}
}

// Company is a directory entry as returned to clients and stored in the cache.
type Company struct {
	ID             string            `json:"id,omitempty"`
	ExternalID     string            `json:"externalId,omitempty"`
	Name           string            `json:"name"`
	Bio            string            `json:"bio,omitempty"`
	ProfileImage   string            `json:"profileImage,omitempty"`
	Platform       string            `json:"platform,omitempty"`
	ProfileURL     string            `json:"profileUrl,omitempty"`
	ActivityDomain string            `json:"activityDomain,omitempty"`
	Location       string            `json:"location,omitempty"`
	Followers      int64             `json:"followers"`
	Verified       bool              `json:"verified"`
	GabonScore     int               `json:"gabonScore"`
	Hashtags       []string          `json:"hashtags"`
	LastPostDate   *time.Time        `json:"lastPostDate,omitempty"`
	LikeCount      int64             `json:"likeCount"`
	Status         string            `json:"status,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// SearchResults is a result set produced by one source.
type SearchResults struct {
	Companies  []*Company
	TotalFound int
	Source     string
}

// CachedResults is a cache hit.
type CachedResults struct {
	Companies  []*Company
	TotalFound int
	Source     string // "cache (<original source>)"
	HitCount   int64
	ExpiresAt  time.Time
}

// CacheEntry is a persisted cache row.
type CacheEntry struct {
	Fingerprint    string
	Query          string
	Hashtags       []string
	Networks       []string
	Language       string
	Results        []*Company
	TotalFound     int
	Source         string
	HitCount       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time
	LastAccessedAt *time.Time
}

// Expired reports whether e is past its expiry at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt.Before(now)
}

// CacheStats summarizes the cache.
type CacheStats struct {
	TotalEntries   int64
	ActiveEntries  int64
	ExpiredEntries int64
	TopEntries     []*CacheEntry
}
