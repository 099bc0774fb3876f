package biz

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var errStoreDown = errors.New("store down")

type fakeCacheRepo struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	touches int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string]*CacheEntry)}
}

func (r *fakeCacheRepo) Get(_ context.Context, fp string) (*CacheEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[fp]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeCacheRepo) Upsert(_ context.Context, e *CacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[e.Fingerprint]; ok {
		old.Results = e.Results
		old.TotalFound = e.TotalFound
		old.Source = e.Source
		old.UpdatedAt = e.UpdatedAt
		old.ExpiresAt = e.ExpiresAt
		return nil
	}
	cp := *e
	cp.HitCount = 0
	r.entries[e.Fingerprint] = &cp
	return nil
}

func (r *fakeCacheRepo) Touch(_ context.Context, fp string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touches++
	e, ok := r.entries[fp]
	if !ok || e.Expired(now) {
		return 0, ErrCacheEntryNotFound
	}
	e.HitCount++
	e.LastAccessedAt = &now
	return e.HitCount, nil
}

func (r *fakeCacheRepo) Delete(_ context.Context, fp string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[fp]
	delete(r.entries, fp)
	return ok, nil
}

func (r *fakeCacheRepo) DeleteIfExpired(_ context.Context, fp string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[fp]
	if !ok || !e.Expired(now) {
		return false, nil
	}
	delete(r.entries, fp)
	return true, nil
}

func (r *fakeCacheRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for fp, e := range r.entries {
		if e.Expired(now) {
			delete(r.entries, fp)
			n++
		}
	}
	return n, nil
}

func (r *fakeCacheRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.entries))
	r.entries = make(map[string]*CacheEntry)
	return n, nil
}

func (r *fakeCacheRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *fakeCacheRepo) CountExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.Expired(now) {
			n++
		}
	}
	return n, nil
}

func (r *fakeCacheRepo) sorted() []*CacheEntry {
	out := make([]*CacheEntry, 0, len(r.entries))
	for _, e := range r.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HitCount != out[j].HitCount {
			return out[i].HitCount > out[j].HitCount
		}
		return out[i].Fingerprint < out[j].Fingerprint
	})
	return out
}

func (r *fakeCacheRepo) TopByHits(_ context.Context, limit int) ([]*CacheEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCacheRepo) FindSimilarQueries(_ context.Context, terms []string, now time.Time, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	seen := make(map[string]struct{})
	for _, e := range r.sorted() {
		if _, ok := seen[e.Query]; ok || !e.ExpiresAt.After(now) {
			continue
		}
		for _, t := range terms {
			if strings.Contains(strings.ToLower(e.Query), strings.ToLower(t)) {
				seen[e.Query] = struct{}{}
				out = append(out, e.Query)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCacheRepo) ListFingerprints(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for fp := range r.entries {
		out = append(out, fp)
	}
	return out, nil
}

func (r *fakeCacheRepo) List(_ context.Context, limit, offset int) ([]*CacheEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted()
	if offset >= len(out) {
		return []*CacheEntry{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// brokenCacheRepo fails every call.
type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string) (*CacheEntry, error) { return nil, errStoreDown }
func (brokenCacheRepo) Upsert(context.Context, *CacheEntry) error        { return errStoreDown }
func (brokenCacheRepo) Touch(context.Context, string, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (brokenCacheRepo) Delete(context.Context, string) (bool, error) { return false, errStoreDown }
func (brokenCacheRepo) DeleteIfExpired(context.Context, string, time.Time) (bool, error) {
	return false, errStoreDown
}
func (brokenCacheRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (brokenCacheRepo) DeleteAll(context.Context) (int64, error) { return 0, errStoreDown }
func (brokenCacheRepo) Count(context.Context) (int64, error)     { return 0, errStoreDown }
func (brokenCacheRepo) CountExpired(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (brokenCacheRepo) TopByHits(context.Context, int) ([]*CacheEntry, error) {
	return nil, errStoreDown
}
func (brokenCacheRepo) FindSimilarQueries(context.Context, []string, time.Time, int) ([]string, error) {
	return nil, errStoreDown
}
func (brokenCacheRepo) ListFingerprints(context.Context) ([]string, error) { return nil, errStoreDown }
func (brokenCacheRepo) List(context.Context, int, int) ([]*CacheEntry, error) {
	return nil, errStoreDown
}

type fakePrefilter struct {
	mu  sync.Mutex
	set map[string]struct{}
	err error
}

func newFakePrefilter() *fakePrefilter {
	return &fakePrefilter{set: make(map[string]struct{})}
}

func (p *fakePrefilter) Add(_ context.Context, fp string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set[fp] = struct{}{}
	return nil
}

func (p *fakePrefilter) MayContain(_ context.Context, fp string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return false, p.err
	}
	_, ok := p.set[fp]
	return ok, nil
}

func (p *fakePrefilter) Reset(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set = make(map[string]struct{})
	return nil
}

// fakeSharedPrefilter counts resets and records rebuilds.
type fakeSharedPrefilter struct {
	*fakePrefilter
	resets  int
	rebuilt []string
}

func (p *fakeSharedPrefilter) Reset(ctx context.Context) error {
	p.resets++
	return p.fakePrefilter.Reset(ctx)
}

func (p *fakeSharedPrefilter) Rebuild(ctx context.Context, fps []string) error {
	p.rebuilt = append(p.rebuilt, fps...)
	for _, fp := range fps {
		if err := p.Add(ctx, fp); err != nil {
			return err
		}
	}
	return nil
}

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies []*Company
	err       error
	keywords  [][]string
	upserted  []*Company
}

func (r *fakeCompanyRepo) SearchByKeywords(_ context.Context, keywords []string, limit int) ([]*Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywords = append(r.keywords, keywords)
	if r.err != nil {
		return nil, r.err
	}
	var out []*Company
	for _, c := range r.companies {
		if matchesAny(c, keywords) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Followers != out[j].Followers {
			return out[i].Followers > out[j].Followers
		}
		return out[i].GabonScore > out[j].GabonScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCompanyRepo) SearchByText(_ context.Context, text string, limit int) ([]*Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*Company
	for _, c := range r.companies {
		if matchesAny(c, []string{text}) {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCompanyRepo) UpsertMany(_ context.Context, companies []*Company) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, companies...)
	return len(companies), nil
}

func matchesAny(c *Company, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(k)
		for _, field := range []string{c.Name, c.Bio, c.Location, c.ActivityDomain} {
			if strings.Contains(strings.ToLower(field), k) {
				return true
			}
		}
		for _, h := range c.Hashtags {
			if h == k {
				return true
			}
		}
	}
	return false
}

type fakeProvider struct {
	name      string
	companies []*Company
	err       error
	calls     int
	mu        sync.Mutex
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(ctx context.Context, _ string, _ int) ([]*Company, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.companies, nil
}
