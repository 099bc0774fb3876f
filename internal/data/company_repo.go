package data

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"companysearch/internal/biz"
	"companysearch/internal/data/postgres/sqlc"
)

type companyRepo struct {
	data *Data
	log  *log.Helper
}

func (r *companyRepo) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*biz.Company, error) {
	if len(keywords) == 0 {
		return []*biz.Company{}, nil
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	rows, err := r.data.Queries.SearchCompaniesByKeywords(ctx, sqlc.SearchCompaniesByKeywordsParams{
		Patterns:   containsPatterns(keywords),
		Keywords:   lowered,
		MaxResults: int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return toBizCompanies(rows), nil
}

func (r *companyRepo) SearchByText(ctx context.Context, text string, limit int) ([]*biz.Company, error) {
	rows, err := r.data.Queries.SearchCompaniesByText(ctx, sqlc.SearchCompaniesByTextParams{
		Pattern:    containsPatterns([]string{text})[0],
		Tags:       []string{strings.ToLower(text)},
		MaxResults: int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return toBizCompanies(rows), nil
}

// UpsertMany stores each company in its own statement. Companies without an
// external id have no stable key and are skipped.
func (r *companyRepo) UpsertMany(ctx context.Context, companies []*biz.Company) (int, error) {
	n := 0
	for _, c := range companies {
		if c.ExternalID == "" {
			continue
		}
		extra, err := json.Marshal(nonNilMap(c.Extra))
		if err != nil {
			return n, err
		}
		var lastPost pgtype.Timestamptz
		if c.LastPostDate != nil {
			lastPost = timestamptz(*c.LastPostDate)
		}
		id, err := r.data.Queries.UpsertCompany(ctx, sqlc.UpsertCompanyParams{
			ExternalID:     c.ExternalID,
			Name:           c.Name,
			Bio:            c.Bio,
			ProfileImage:   c.ProfileImage,
			Platform:       c.Platform,
			ProfileUrl:     c.ProfileURL,
			ActivityDomain: c.ActivityDomain,
			Location:       c.Location,
			Followers:      c.Followers,
			Verified:       c.Verified,
			GabonScore:     int32(c.GabonScore),
			Hashtags:       nonNil(c.Hashtags),
			LastPostDate:   lastPost,
			Extra:          extra,
		})
		if err != nil {
			return n, err
		}
		if c.ID == "" {
			c.ID = uuidString(id)
		}
		n++
	}
	r.log.WithContext(ctx).Debugf("stored %d of %d companies", n, len(companies))
	return n, nil
}

func toBizCompanies(rows []sqlc.Company) []*biz.Company {
	out := make([]*biz.Company, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBizCompany(row))
	}
	return out
}

func toBizCompany(row sqlc.Company) *biz.Company {
	c := &biz.Company{
		ID:             uuidString(row.ID),
		ExternalID:     row.ExternalID,
		Name:           row.Name,
		Bio:            row.Bio,
		ProfileImage:   row.ProfileImage,
		Platform:       row.Platform,
		ProfileURL:     row.ProfileUrl,
		ActivityDomain: row.ActivityDomain,
		Location:       row.Location,
		Followers:      row.Followers,
		Verified:       row.Verified,
		GabonScore:     int(row.GabonScore),
		Hashtags:       nonNil(row.Hashtags),
		LikeCount:      row.LikeCount,
		Status:         row.Status,
	}
	if row.LastPostDate.Valid {
		t := row.LastPostDate.Time
		c.LastPostDate = &t
	}
	if len(row.Extra) > 0 {
		var extra map[string]string
		if err := json.Unmarshal(row.Extra, &extra); err == nil && len(extra) > 0 {
			c.Extra = extra
		}
	}
	return c
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
