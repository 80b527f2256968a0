package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/pkg/geo"
)

const (
	defaultBaseURL  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	defaultPhotoURL = "https://maps.googleapis.com/maps/api/place/photo"
	metersPerMile   = 1609.34
	// The nearby search endpoint rejects radii above 50km.
	maxRadiusMeters = 50000
	defaultRating   = 3.0
	unknownName     = "Unknown Google Stop"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("google places api key not configured")

// Config drives the Places client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client queries the Google Places nearby search endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchNearby implements stops.PlacesSearcher.
func (c *Client) SearchNearby(ctx context.Context, center geo.Point, radiusMiles float64, keyword string) ([]stops.Place, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	radius := int(radiusMiles * metersPerMile)
	if radius > maxRadiusMeters {
		radius = maxRadiusMeters
	}
	params := url.Values{}
	params.Set("location", strconv.FormatFloat(center.Lat, 'f', -1, 64)+","+strconv.FormatFloat(center.Lon, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("keyword", keyword)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("places request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}
	switch raw.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("places api error: %s %s", raw.Status, raw.ErrorMessage)
	}
	return normalizeResults(raw.Results), nil
}

var _ stops.PlacesSearcher = (*Client)(nil)

type apiResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	PlaceID          string     `json:"place_id"`
	Name             string     `json:"name"`
	Geometry         apiGeom    `json:"geometry"`
	Rating           *float64   `json:"rating"`
	UserRatingsTotal int        `json:"user_ratings_total"`
	Types            []string   `json:"types"`
	Photos           []apiPhoto `json:"photos"`
}

type apiGeom struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type apiPhoto struct {
	PhotoReference string `json:"photo_reference"`
}

// normalizeResults maps raw results onto places. The photo URL carries
// only the reference; callers add their own key before fetching it.
func normalizeResults(results []apiResult) []stops.Place {
	out := make([]stops.Place, 0, len(results))
	for _, r := range results {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = unknownName
		}
		rating := defaultRating
		if r.Rating != nil {
			rating = *r.Rating
		}
		place := stops.Place{
			PlaceID:     r.PlaceID,
			Name:        name,
			Latitude:    r.Geometry.Location.Lat,
			Longitude:   r.Geometry.Location.Lng,
			Rating:      rating,
			UserRatings: r.UserRatingsTotal,
			Types:       r.Types,
		}
		if len(r.Photos) > 0 && r.Photos[0].PhotoReference != "" {
			place.PhotoURL = defaultPhotoURL + "?maxwidth=400&photoreference=" + url.QueryEscape(r.Photos[0].PhotoReference)
		}
		out = append(out, place)
	}
	return out
}
