package data

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"companysearch/internal/biz"
	"companysearch/internal/data/postgres/sqlc"
)

type searchCacheRepo struct {
	data *Data
	log  *log.Helper
}

func (r *searchCacheRepo) Get(ctx context.Context, fingerprint string) (*biz.CacheEntry, error) {
	row, err := r.data.Queries.GetSearchCache(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toBizCacheEntry(row)
}

func (r *searchCacheRepo) Upsert(ctx context.Context, e *biz.CacheEntry) error {
	results, err := json.Marshal(e.Results)
	if err != nil {
		return err
	}
	return r.data.Queries.UpsertSearchCache(ctx, sqlc.UpsertSearchCacheParams{
		Fingerprint: e.Fingerprint,
		Query:       e.Query,
		Hashtags:    nonNil(e.Hashtags),
		Networks:    nonNil(e.Networks),
		Lang:        e.Language,
		Results:     results,
		TotalFound:  int32(e.TotalFound),
		Source:      e.Source,
		CreatedAt:   timestamptz(e.CreatedAt),
		ExpiresAt:   timestamptz(e.ExpiresAt),
	})
}

func (r *searchCacheRepo) Touch(ctx context.Context, fingerprint string, now time.Time) (int64, error) {
	hits, err := r.data.Queries.TouchSearchCache(ctx, sqlc.TouchSearchCacheParams{
		Now:         timestamptz(now),
		Fingerprint: fingerprint,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, biz.ErrCacheEntryNotFound
	}
	return hits, err
}

func (r *searchCacheRepo) Delete(ctx context.Context, fingerprint string) (bool, error) {
	n, err := r.data.Queries.DeleteSearchCache(ctx, fingerprint)
	return n > 0, err
}

func (r *searchCacheRepo) DeleteIfExpired(ctx context.Context, fingerprint string, now time.Time) (bool, error) {
	n, err := r.data.Queries.DeleteSearchCacheIfExpired(ctx, sqlc.DeleteSearchCacheIfExpiredParams{
		Fingerprint: fingerprint,
		ExpiresAt:   timestamptz(now),
	})
	return n > 0, err
}

func (r *searchCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.data.Queries.DeleteExpiredSearchCaches(ctx, timestamptz(now))
}

func (r *searchCacheRepo) DeleteAll(ctx context.Context) (int64, error) {
	return r.data.Queries.DeleteAllSearchCaches(ctx)
}

func (r *searchCacheRepo) Count(ctx context.Context) (int64, error) {
	return r.data.Queries.CountSearchCaches(ctx)
}

func (r *searchCacheRepo) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.data.Queries.CountExpiredSearchCaches(ctx, timestamptz(now))
}

func (r *searchCacheRepo) TopByHits(ctx context.Context, limit int) ([]*biz.CacheEntry, error) {
	rows, err := r.data.Queries.ListTopSearchCaches(ctx, int32(limit))
	if err != nil {
		return nil, err
	}
	return r.toBizCacheEntries(ctx, rows), nil
}

func (r *searchCacheRepo) FindSimilarQueries(ctx context.Context, terms []string, now time.Time, limit int) ([]string, error) {
	if len(terms) == 0 || limit <= 0 {
		return []string{}, nil
	}
	queries, err := r.data.Queries.FindSimilarSearchQueries(ctx, sqlc.FindSimilarSearchQueriesParams{
		Patterns:   containsPatterns(terms),
		Now:        timestamptz(now),
		MaxResults: int32(limit),
	})
	if err != nil {
		return nil, err
	}
	if queries == nil {
		queries = []string{}
	}
	return queries, nil
}

func (r *searchCacheRepo) ListFingerprints(ctx context.Context) ([]string, error) {
	fps, err := r.data.Queries.ListSearchCacheFingerprints(ctx)
	if err != nil {
		return nil, err
	}
	for i, fp := range fps {
		// CHAR(64) is blank-padded.
		fps[i] = strings.TrimSpace(fp)
	}
	return fps, nil
}

func (r *searchCacheRepo) List(ctx context.Context, limit, offset int) ([]*biz.CacheEntry, error) {
	rows, err := r.data.Queries.ListSearchCaches(ctx, sqlc.ListSearchCachesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}
	return r.toBizCacheEntries(ctx, rows), nil
}

// toBizCacheEntries converts rows, skipping any whose results cannot be decoded.
func (r *searchCacheRepo) toBizCacheEntries(ctx context.Context, rows []sqlc.SearchCache) []*biz.CacheEntry {
	out := make([]*biz.CacheEntry, 0, len(rows))
	for _, row := range rows {
		e, err := toBizCacheEntry(row)
		if err != nil {
			r.log.WithContext(ctx).Warnf("skipping unreadable cache row %s: %v", row.Fingerprint, err)
			continue
		}
		out = append(out, e)
	}
	return out
}

func toBizCacheEntry(row sqlc.SearchCache) (*biz.CacheEntry, error) {
	companies := []*biz.Company{}
	if len(row.Results) > 0 {
		if err := json.Unmarshal(row.Results, &companies); err != nil {
			return nil, err
		}
	}
	e := &biz.CacheEntry{
		Fingerprint: strings.TrimSpace(row.Fingerprint),
		Query:       row.Query,
		Hashtags:    nonNil(row.Hashtags),
		Networks:    nonNil(row.Networks),
		Language:    row.Lang,
		Results:     companies,
		TotalFound:  int(row.TotalFound),
		Source:      row.Source,
		HitCount:    row.HitCount,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
		ExpiresAt:   row.ExpiresAt.Time,
	}
	if row.LastAccessedAt.Valid {
		t := row.LastAccessedAt.Time
		e.LastAccessedAt = &t
	}
	return e, nil
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPatterns turns terms into ILIKE substring patterns.
func containsPatterns(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, "%"+likeEscaper.Replace(t)+"%")
	}
	return out
}
