package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GooglePlacesConfig configures the Places Text Search client.
type GooglePlacesConfig struct {
	BaseURL  string // e.g., "https://maps.googleapis.com/maps/api/place"
	APIKey   string
	Location string // "lat,lng" bias
	Radius   int    // meters
	Language string
	Timeout  time.Duration
}

// DefaultGooglePlacesConfig biases results around Libreville.
func DefaultGooglePlacesConfig() GooglePlacesConfig {
	return GooglePlacesConfig{
		BaseURL:  "https://maps.googleapis.com/maps/api/place",
		Location: "0.3901,9.4673",
		Radius:   50000,
		Language: "fr",
		Timeout:  DefaultTimeout,
	}
}

// Place is one Text Search result.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Vicinity         string   `json:"vicinity,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
	Photos           []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos,omitempty"`
}

type textSearchResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Results      []Place `json:"results"`
}

// GooglePlacesClient calls the Places Text Search API.
type GooglePlacesClient struct {
	config     GooglePlacesConfig
	httpClient *http.Client
}

// NewGooglePlacesClient creates a new Places client.
func NewGooglePlacesClient(config GooglePlacesConfig) *GooglePlacesClient {
	def := DefaultGooglePlacesConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.Language == "" {
		config.Language = def.Language
	}
	return &GooglePlacesClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// TextSearch returns the establishments matching query. ZERO_RESULTS is an
// empty slice, not an error.
func (c *GooglePlacesClient) TextSearch(ctx context.Context, query string) ([]Place, error) {
	if c.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("key", c.config.APIKey)
	params.Set("query", query)
	params.Set("type", "establishment")
	params.Set("language", c.config.Language)
	if c.config.Location != "" {
		params.Set("location", c.config.Location)
	}
	if c.config.Radius > 0 {
		params.Set("radius", fmt.Sprint(c.config.Radius))
	}

	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/textsearch/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Google Places API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: "google_places", Status: resp.StatusCode, Message: string(body)}
	}

	var out textSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	switch out.Status {
	case "OK":
		return out.Results, nil
	case "ZERO_RESULTS":
		return []Place{}, nil
	default:
		return nil, &APIError{Provider: "google_places", Status: resp.StatusCode, Message: out.Status + ": " + out.ErrorMessage}
	}
}

// PhotoURL returns the photo endpoint for the first photo of p, if any.
func (c *GooglePlacesClient) PhotoURL(p Place) string {
	if len(p.Photos) == 0 {
		return ""
	}
	params := url.Values{}
	params.Set("maxwidth", "400")
	params.Set("photoreference", p.Photos[0].PhotoReference)
	params.Set("key", c.config.APIKey)
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/photo?" + params.Encode()
}

var googleTypeActivity = map[string]string{
	"restaurant":       "restauration",
	"food":             "restauration",
	"cafe":             "restauration",
	"bar":              "restauration",
	"bakery":           "restauration",
	"hair_care":        "beauté",
	"beauty_salon":     "beauté",
	"spa":              "beauté",
	"lodging":          "hôtellerie",
	"store":            "commerce",
	"clothing_store":   "commerce",
	"supermarket":      "commerce",
	"pharmacy":         "santé",
	"hospital":         "santé",
	"doctor":           "santé",
	"school":           "éducation",
	"university":       "éducation",
	"bank":             "finance",
	"insurance_agency": "finance",
	"car_repair":       "automobile",
	"car_dealer":       "automobile",
	"gas_station":      "automobile",
}

// ActivityFromTypes maps Google place types to a directory activity domain.
func ActivityFromTypes(types []string) string {
	for _, t := range types {
		if a, ok := googleTypeActivity[t]; ok {
			return a
		}
	}
	return "services"
}
