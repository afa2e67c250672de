// Package places provides a client for looking up restaurants with the
// Google Places and Distance Matrix APIs.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/metrics"
)

const (
	DefaultPlacesURL = "https://maps.googleapis.com/maps/api/place"
	DefaultMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

	// searchSlack widens the radius filter since driving distance exceeds
	// straight-line distance.
	searchSlack = 1.5

	earthRadiusMeters = 6371000.0
	metersPerMile     = 1609.344
	fallbackSpeedMPH  = 35.0
)

var (
	ErrDisabled      = errors.New("place lookup is not configured")
	ErrPlaceNotFound = errors.New("place not found")
)

// Place is one search hit.
type Place struct {
	ID             string   `json:"place_id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	DistanceMeters *float64 `json:"distance"`
}

// PlaceDetails is the detail view of a place, with travel distance from the
// configured centre.
type PlaceDetails struct {
	ID             string   `json:"place_id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	Website        string   `json:"website"`
	MapsURL        string   `json:"google_maps_url"`
	DistanceMeters *float64 `json:"distance"`
	ETAMinutes     *int     `json:"eta"`
}

// Client defines the interface for place lookups
type Client interface {
	// Search returns up to max places matching query, nearest first
	Search(ctx context.Context, query string, max int) ([]Place, error)
	// Details returns the detail view for a place id
	Details(ctx context.Context, id string) (*PlaceDetails, error)
	// Enabled reports whether lookups can reach the API
	Enabled() bool
}

// Config configures an HTTPClient.
type Config struct {
	APIKey            string
	Location          string // "lat,lng"
	RadiusMeters      int
	RequestsPerSecond float64
	PlacesURL         string
	MatrixURL         string
}

// HTTPClient is a real HTTP client for the Google APIs
type HTTPClient struct {
	cfg        Config
	lat, lng   float64
	hasCenter  bool
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	log        logger.Logger
}

// NewHTTPClient creates a new places client
func NewHTTPClient(cfg Config, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(cfg, &http.Client{Timeout: 10 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a new places client with a custom http.Client
func NewHTTPClientWithHTTPClient(cfg Config, httpClient *http.Client, log logger.Logger) *HTTPClient {
	if cfg.PlacesURL == "" {
		cfg.PlacesURL = DefaultPlacesURL
	}
	if cfg.MatrixURL == "" {
		cfg.MatrixURL = DefaultMatrixURL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &HTTPClient{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		log:        log,
	}
	c.lat, c.lng, c.hasCenter = ParseLocation(cfg.Location)

	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "google-places",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Enabled reports whether an API key is configured.
func (c *HTTPClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

// ParseLocation reads a "lat,lng" pair.
func ParseLocation(s string) (lat, lng float64, ok bool) {
	latStr, lngStr, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// Haversine returns the great-circle distance in meters.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// EstimateETA is the drive time in whole minutes at a flat city speed.
func EstimateETA(meters float64) int {
	return int(meters / metersPerMile / fallbackSpeedMPH * 60)
}

// get throttles, guards and performs one GET, returning the body.
func (c *HTTPClient) get(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.PlacesRequests.WithLabelValues(endpoint, "throttled").Inc()
		return nil, err
	}

	params.Set("key", c.cfg.APIKey)
	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to places API: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
		}
		return body, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.PlacesRequests.WithLabelValues(endpoint, "rejected").Inc()
	case err != nil:
		metrics.PlacesRequests.WithLabelValues(endpoint, "error").Inc()
	default:
		metrics.PlacesRequests.WithLabelValues(endpoint, "ok").Inc()
	}
	if err != nil {
		c.log.Debug("Places request failed", "endpoint", endpoint, "error", err)
		return nil, err
	}
	return body, nil
}

type latLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type searchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string   `json:"place_id"`
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Geometry         geometry `json:"geometry"`
	} `json:"results"`
}

// Search runs a text search biased to the configured centre. Hits without
// coordinates, or beyond 1.5x the radius, are dropped.
func (c *HTTPClient) Search(ctx context.Context, query string, max int) ([]Place, error) {
	if !c.Enabled() {
		return []Place{}, nil
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "restaurant|cafe|food")
	if c.hasCenter {
		params.Set("location", c.cfg.Location)
		params.Set("radius", strconv.Itoa(c.cfg.RadiusMeters))
	}

	body, err := c.get(ctx, "search", c.cfg.PlacesURL+"/textsearch/json", params)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []Place{}, nil
	default:
		return nil, fmt.Errorf("places API error: %s %s", resp.Status, resp.ErrorMessage)
	}

	out := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		loc := r.Geometry.Location
		if !c.hasCenter || loc.Lat == nil || loc.Lng == nil {
			continue
		}
		d := Haversine(c.lat, c.lng, *loc.Lat, *loc.Lng)
		if d > float64(c.cfg.RadiusMeters)*searchSlack {
			continue
		}
		address := r.FormattedAddress
		if address == "" {
			address = "N/A"
		}
		out = append(out, Place{ID: r.PlaceID, Name: r.Name, Address: address, DistanceMeters: &d})
	}

	slices.SortStableFunc(out, func(a, b Place) int {
		switch {
		case *a.DistanceMeters < *b.DistanceMeters:
			return -1
		case *a.DistanceMeters > *b.DistanceMeters:
			return 1
		}
		return 0
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name                 string   `json:"name"`
		FormattedPhoneNumber string   `json:"formatted_phone_number"`
		FormattedAddress     string   `json:"formatted_address"`
		Website              string   `json:"website"`
		URL                  string   `json:"url"`
		Geometry             geometry `json:"geometry"`
	} `json:"result"`
}

// Details fetches a place and its driving distance from the centre. When
// the Distance Matrix call fails the straight-line distance is used.
func (c *HTTPClient) Details(ctx context.Context, id string) (*PlaceDetails, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if id == "" {
		return nil, ErrPlaceNotFound
	}
	params := url.Values{}
	params.Set("place_id", id)
	params.Set("fields", "name,formatted_phone_number,formatted_address,website,geometry,url")

	body, err := c.get(ctx, "details", c.cfg.PlacesURL+"/details/json", params)
	if err != nil {
		return nil, err
	}
	var resp detailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	switch resp.Status {
	case "OK":
	case "NOT_FOUND", "INVALID_REQUEST", "ZERO_RESULTS":
		return nil, ErrPlaceNotFound
	default:
		return nil, fmt.Errorf("places API error: %s", resp.Status)
	}

	r := resp.Result
	details := &PlaceDetails{
		ID:      id,
		Name:    r.Name,
		Phone:   r.FormattedPhoneNumber,
		Address: r.FormattedAddress,
		Website: r.Website,
		MapsURL: r.URL,
	}

	loc := r.Geometry.Location
	if !c.hasCenter || loc.Lat == nil || loc.Lng == nil {
		return details, nil
	}
	meters, minutes, err := c.drivingDistance(ctx, *loc.Lat, *loc.Lng)
	if err == nil {
		details.DistanceMeters = &meters
		details.ETAMinutes = &minutes
		return details, nil
	}
	c.log.Debug("Falling back to straight-line distance", "place", id, "error", err)

	d := Haversine(c.lat, c.lng, *loc.Lat, *loc.Lng)
	eta := EstimateETA(d)
	details.DistanceMeters = &d
	details.ETAMinutes = &eta
	return details, nil
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance *struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration *struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// drivingDistance returns meters and whole minutes by road.
func (c *HTTPClient) drivingDistance(ctx context.Context, lat, lng float64) (float64, int, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%g,%g", c.lat, c.lng))
	params.Set("destinations", fmt.Sprintf("%g,%g", lat, lng))
	params.Set("mode", "driving")
	params.Set("units", "imperial")

	body, err := c.get(ctx, "distance_matrix", c.cfg.MatrixURL, params)
	if err != nil {
		return 0, 0, err
	}
	var resp matrixResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status != "OK" || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, 0, fmt.Errorf("distance matrix error: %s", resp.Status)
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" || el.Distance == nil || el.Duration == nil {
		return 0, 0, fmt.Errorf("distance matrix element error: %s", el.Status)
	}
	return el.Distance.Value, int(el.Duration.Value / 60), nil
}
