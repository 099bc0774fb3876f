package data

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"companysearch/internal/biz"
	"companysearch/internal/pkg/filter"
)

// memoryStore backs both repositories when no database is configured.
// Entries are copied on the way in and out.
type memoryStore struct {
	mu        sync.RWMutex
	entries   map[string]*biz.CacheEntry
	companies map[string]*biz.Company // platform/external id
	order     []string                // company insertion order
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries:   make(map[string]*biz.CacheEntry),
		companies: make(map[string]*biz.Company),
	}
}

func copyEntry(e *biz.CacheEntry) *biz.CacheEntry {
	cp := *e
	cp.Hashtags = append([]string{}, e.Hashtags...)
	cp.Networks = append([]string{}, e.Networks...)
	cp.Results = append([]*biz.Company{}, e.Results...)
	if e.LastAccessedAt != nil {
		t := *e.LastAccessedAt
		cp.LastAccessedAt = &t
	}
	return &cp
}

type memorySearchCacheRepo struct {
	store *memoryStore
}

func (r *memorySearchCacheRepo) Get(_ context.Context, fingerprint string) (*biz.CacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	return copyEntry(e), nil
}

func (r *memorySearchCacheRepo) Upsert(_ context.Context, e *biz.CacheEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if old, ok := r.store.entries[e.Fingerprint]; ok {
		old.Results = append([]*biz.Company{}, e.Results...)
		old.TotalFound = e.TotalFound
		old.Source = e.Source
		old.UpdatedAt = e.UpdatedAt
		old.ExpiresAt = e.ExpiresAt
		return nil
	}
	cp := copyEntry(e)
	cp.HitCount = 0
	cp.LastAccessedAt = nil
	r.store.entries[e.Fingerprint] = cp
	return nil
}

func (r *memorySearchCacheRepo) Touch(_ context.Context, fingerprint string, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entries[fingerprint]
	if !ok || e.Expired(now) {
		return 0, biz.ErrCacheEntryNotFound
	}
	e.HitCount++
	e.LastAccessedAt = &now
	return e.HitCount, nil
}

func (r *memorySearchCacheRepo) Delete(_ context.Context, fingerprint string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.entries[fingerprint]
	delete(r.store.entries, fingerprint)
	return ok, nil
}

func (r *memorySearchCacheRepo) DeleteIfExpired(_ context.Context, fingerprint string, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entries[fingerprint]
	if !ok || !e.Expired(now) {
		return false, nil
	}
	delete(r.store.entries, fingerprint)
	return true, nil
}

func (r *memorySearchCacheRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for fp, e := range r.store.entries {
		if e.Expired(now) {
			delete(r.store.entries, fp)
			n++
		}
	}
	return n, nil
}

func (r *memorySearchCacheRepo) DeleteAll(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := int64(len(r.store.entries))
	r.store.entries = make(map[string]*biz.CacheEntry)
	return n, nil
}

func (r *memorySearchCacheRepo) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.entries)), nil
}

func (r *memorySearchCacheRepo) CountExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var n int64
	for _, e := range r.store.entries {
		if e.Expired(now) {
			n++
		}
	}
	return n, nil
}

// snapshot copies every entry, ordered by less.
func (r *memorySearchCacheRepo) snapshot(less func(a, b *biz.CacheEntry) bool) []*biz.CacheEntry {
	out := make([]*biz.CacheEntry, 0, len(r.store.entries))
	for _, e := range r.store.entries {
		out = append(out, copyEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byHits(a, b *biz.CacheEntry) bool {
	if a.HitCount != b.HitCount {
		return a.HitCount > b.HitCount
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.Fingerprint < b.Fingerprint
}

func byUpdated(a, b *biz.CacheEntry) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.Fingerprint < b.Fingerprint
}

func (r *memorySearchCacheRepo) TopByHits(_ context.Context, limit int) ([]*biz.CacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return window(r.snapshot(byHits), limit, 0), nil
}

// FindSimilarQueries walks entries by hits, so the first entry seen for a
// query string carries its highest hit count.
func (r *memorySearchCacheRepo) FindSimilarQueries(_ context.Context, terms []string, now time.Time, limit int) ([]string, error) {
	out := []string{}
	m := filter.NewMatcher(terms...)
	if m.Len() == 0 || limit <= 0 {
		return out, nil
	}
	seen := make(map[string]struct{})

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, e := range r.snapshot(byHits) {
		if !e.ExpiresAt.After(now) || !m.HasMatch(e.Query) {
			continue
		}
		if _, ok := seen[e.Query]; ok {
			continue
		}
		seen[e.Query] = struct{}{}
		out = append(out, e.Query)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memorySearchCacheRepo) ListFingerprints(_ context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]string, 0, len(r.store.entries))
	for fp := range r.store.entries {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memorySearchCacheRepo) List(_ context.Context, limit, offset int) ([]*biz.CacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return window(r.snapshot(byUpdated), limit, offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

type memoryCompanyRepo struct {
	store *memoryStore
}

func companyMatches(c *biz.Company, m *filter.AhoCorasick, tags map[string]struct{}) bool {
	for _, field := range []string{c.Name, c.Bio, c.Location, c.ActivityDomain} {
		if m.HasMatch(field) {
			return true
		}
	}
	for _, h := range c.Hashtags {
		if _, ok := tags[strings.ToLower(h)]; ok {
			return true
		}
	}
	return false
}

func (r *memoryCompanyRepo) search(terms []string, limit int, less func(a, b *biz.Company) bool) []*biz.Company {
	out := []*biz.Company{}
	m := filter.NewMatcher(terms...)
	if m.Len() == 0 {
		return out
	}
	tags := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		tags[strings.ToLower(t)] = struct{}{}
	}

	r.store.mu.RLock()
	for _, key := range r.store.order {
		c := r.store.companies[key]
		if companyMatches(c, m, tags) {
			cp := *c
			out = append(out, &cp)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return window(out, limit, 0)
}

func (r *memoryCompanyRepo) SearchByKeywords(_ context.Context, keywords []string, limit int) ([]*biz.Company, error) {
	return r.search(keywords, limit, func(a, b *biz.Company) bool {
		if a.Followers != b.Followers {
			return a.Followers > b.Followers
		}
		return a.GabonScore > b.GabonScore
	}), nil
}

// SearchByText orders by gabon score, then newest first.
func (r *memoryCompanyRepo) SearchByText(_ context.Context, text string, limit int) ([]*biz.Company, error) {
	out := r.search([]string{text}, limit, func(a, b *biz.Company) bool {
		return a.GabonScore > b.GabonScore
	})
	return out, nil
}

func (r *memoryCompanyRepo) UpsertMany(_ context.Context, companies []*biz.Company) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := 0
	for _, c := range companies {
		if c.ExternalID == "" {
			continue
		}
		key := c.Platform + "/" + c.ExternalID
		if old, ok := r.store.companies[key]; ok {
			c.ID = old.ID
			cp := *c
			r.store.companies[key] = &cp
			n++
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		cp := *c
		r.store.companies[key] = &cp
		// newest first, matching created_at DESC
		r.store.order = append([]string{key}, r.store.order...)
		n++
	}
	return n, nil
}
