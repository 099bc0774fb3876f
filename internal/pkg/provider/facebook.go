package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FacebookConfig configures the Graph API page search client.
type FacebookConfig struct {
	BaseURL     string // e.g., "https://graph.facebook.com"
	Version     string // e.g., "v18.0"
	AccessToken string
	Timeout     time.Duration
}

// DefaultFacebookConfig returns the public Graph API defaults.
func DefaultFacebookConfig() FacebookConfig {
	return FacebookConfig{
		BaseURL: "https://graph.facebook.com",
		Version: "v18.0",
		Timeout: 12 * time.Second,
	}
}

// FacebookPage is a Graph API page object.
type FacebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	About       string `json:"about,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Category    string `json:"category,omitempty"`
	FanCount    int    `json:"fan_count,omitempty"`
	Location    *struct {
		City    string `json:"city,omitempty"`
		Country string `json:"country,omitempty"`
	} `json:"location,omitempty"`
	Picture *struct {
		Data struct {
			URL string `json:"url,omitempty"`
		} `json:"data"`
	} `json:"picture,omitempty"`
}

type graphSearchResponse struct {
	Data  []FacebookPage `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

const facebookPageFields = "id,name,about,description,link,category,fan_count,picture.type(large){url},location{city,country}"

// FacebookClient searches public pages through the Graph API.
type FacebookClient struct {
	config     FacebookConfig
	httpClient *http.Client
}

// NewFacebookClient creates a new Graph API client.
func NewFacebookClient(config FacebookConfig) *FacebookClient {
	def := DefaultFacebookConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Version == "" {
		config.Version = def.Version
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	return &FacebookClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// SearchPages returns up to limit pages matching query. limit is clamped to 1..100.
func (c *FacebookClient) SearchPages(ctx context.Context, query string, limit int) ([]FacebookPage, error) {
	if c.config.AccessToken == "" {
		return nil, ErrNotConfigured
	}
	limit = min(max(limit, 1), 100)

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "page")
	params.Set("fields", facebookPageFields)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("access_token", c.config.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/search?%s", strings.TrimSuffix(c.config.BaseURL, "/"), c.config.Version, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Facebook Graph API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out graphSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{Provider: "facebook", Status: resp.StatusCode, Message: string(body)}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return nil, &APIError{Provider: "facebook", Status: resp.StatusCode, Message: out.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: "facebook", Status: resp.StatusCode, Message: string(body)}
	}
	return out.Data, nil
}

// ProfileURL returns the page link, or a URL derived from its id.
func (p FacebookPage) ProfileURL() string {
	if p.Link != "" {
		return p.Link
	}
	if p.ID != "" {
		return "https://facebook.com/" + p.ID
	}
	return ""
}

// Bio returns about, falling back to description.
func (p FacebookPage) Bio() string {
	if p.About != "" {
		return p.About
	}
	return p.Description
}

// LocationText joins city and country.
func (p FacebookPage) LocationText() string {
	if p.Location == nil {
		return ""
	}
	var parts []string
	for _, s := range []string{p.Location.City, p.Location.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// PictureURL returns the large picture URL, if any.
func (p FacebookPage) PictureURL() string {
	if p.Picture == nil {
		return ""
	}
	return p.Picture.Data.URL
}
