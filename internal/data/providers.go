package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/biz"
	"companysearch/internal/conf"
	"companysearch/internal/pkg/provider"
)

const (
	platformGoogle   = "google_places"
	platformFacebook = "facebook"
)

type googleProvider struct {
	client *provider.GooglePlacesClient
}

func (p *googleProvider) Name() string { return platformGoogle }

func (p *googleProvider) Search(ctx context.Context, text string, limit int) ([]*biz.Company, error) {
	places, err := p.client.TextSearch(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]*biz.Company, 0, len(places))
	for _, place := range places {
		out = append(out, p.toCompany(place))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (p *googleProvider) toCompany(place provider.Place) *biz.Company {
	address := place.FormattedAddress
	if address == "" {
		address = place.Vicinity
	}
	bio := place.Name
	if address != "" {
		bio = place.Name + " - " + address
	}
	location := address
	if location == "" {
		location = "Gabon"
	}

	extra := map[string]string{}
	if place.FormattedAddress != "" {
		extra["address"] = place.FormattedAddress
	}
	if place.Rating > 0 {
		extra["rating"] = fmt.Sprintf("%.1f", place.Rating)
		extra["ratings_total"] = fmt.Sprintf("%d", place.UserRatingsTotal)
	}
	if place.BusinessStatus != "" {
		extra["business_status"] = place.BusinessStatus
	}

	return &biz.Company{
		ExternalID:     place.PlaceID,
		Name:           place.Name,
		Bio:            bio,
		ProfileImage:   p.client.PhotoURL(place),
		Platform:       platformGoogle,
		ProfileURL:     "https://www.google.com/maps/place/?q=place_id:" + place.PlaceID,
		ActivityDomain: provider.ActivityFromTypes(place.Types),
		Location:       location,
		Hashtags:       nonNil(provider.ExtractHashtags(bio)),
		Extra:          extra,
	}
}

type facebookProvider struct {
	client *provider.FacebookClient
}

func (p *facebookProvider) Name() string { return platformFacebook }

func (p *facebookProvider) Search(ctx context.Context, text string, limit int) ([]*biz.Company, error) {
	pages, err := p.client.SearchPages(ctx, text, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*biz.Company, 0, len(pages))
	for _, page := range pages {
		activity := page.Category
		if activity == "" {
			activity = "non spécifié"
		}
		bio := page.Bio()
		out = append(out, &biz.Company{
			ExternalID:     page.ID,
			Name:           page.Name,
			Bio:            bio,
			ProfileImage:   page.PictureURL(),
			Platform:       platformFacebook,
			ProfileURL:     page.ProfileURL(),
			ActivityDomain: activity,
			Location:       page.LocationText(),
			Followers:      int64(page.FanCount),
			Hashtags:       nonNil(provider.ExtractHashtags(bio)),
		})
	}
	return out, nil
}

// NewCompanyProviders returns the enabled external providers. A provider
// without credentials is skipped.
func NewCompanyProviders(c *conf.Providers, logger log.Logger) []biz.CompanyProvider {
	helper := log.NewHelper(log.With(logger, "module", "data/providers"))
	var out []biz.CompanyProvider
	if c == nil {
		return out
	}
	timeout := c.Timeout.Or(provider.DefaultTimeout)

	if g := c.GooglePlaces; g != nil && g.Enabled {
		if strings.TrimSpace(g.APIKey) == "" {
			helper.Warn("google places enabled without an api key, skipping")
		} else {
			cfg := provider.DefaultGooglePlacesConfig()
			cfg.APIKey = g.APIKey
			cfg.Timeout = timeout
			if g.BaseURL != "" {
				cfg.BaseURL = g.BaseURL
			}
			if g.Location != "" {
				cfg.Location = g.Location
			}
			if g.Radius > 0 {
				cfg.Radius = g.Radius
			}
			out = append(out, &googleProvider{client: provider.NewGooglePlacesClient(cfg)})
		}
	}

	if f := c.Facebook; f != nil && f.Enabled {
		if strings.TrimSpace(f.AccessToken) == "" {
			helper.Warn("facebook enabled without an access token, skipping")
		} else {
			cfg := provider.DefaultFacebookConfig()
			cfg.AccessToken = f.AccessToken
			cfg.Timeout = timeout
			if f.BaseURL != "" {
				cfg.BaseURL = f.BaseURL
			}
			if f.Version != "" {
				cfg.Version = f.Version
			}
			out = append(out, &facebookProvider{client: provider.NewFacebookClient(cfg)})
		}
	}

	names := make([]string, 0, len(out))
	for _, p := range out {
		names = append(names, p.Name())
	}
	helper.Infof("external providers: [%s]", strings.Join(names, ", "))
	return out
}
