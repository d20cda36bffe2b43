// Package gateway is the only place that holds upstream credentials and talks
// to the three third-party providers: GeoNames (geocoding), Weatherbit
// (weather), and Pixabay (images). Every response is passed through package
// normalize before it leaves this package, so callers never see a raw
// provider payload.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/normalize"
)

// Default upstream base URLs.
const (
	DefaultGeonamesURL   = "http://api.geonames.org/searchJSON"
	DefaultWeatherbitURL = "https://api.weatherbit.io/v2.0"
	DefaultPixabayURL    = "https://pixabay.com/api/"
)

// Credentials are the per-provider secrets. All three are required.
type Credentials struct {
	GeonamesUser  string
	WeatherbitKey string
	PixabayKey    string
}

// Options configures a Client. Only Credentials is required.
type Options struct {
	Credentials Credentials

	// Base URLs; empty values fall back to the Default* constants.
	GeonamesURL   string
	WeatherbitURL string
	PixabayURL    string

	// Timeout bounds each upstream call. Zero means no timeout beyond ctx.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client performs the three upstream lookups.
type Client struct {
	creds         Credentials
	geonamesURL   string
	weatherbitURL string
	pixabayURL    string
	timeout       time.Duration
	http          *http.Client
	log           *slog.Logger
}

// New validates opts and returns a ready Client.
// A missing credential is reported here rather than on the first call.
func New(opts Options) (*Client, error) {
	var missing []string
	if strings.TrimSpace(opts.Credentials.GeonamesUser) == "" {
		missing = append(missing, "geonames user")
	}
	if strings.TrimSpace(opts.Credentials.WeatherbitKey) == "" {
		missing = append(missing, "weatherbit key")
	}
	if strings.TrimSpace(opts.Credentials.PixabayKey) == "" {
		missing = append(missing, "pixabay key")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("gateway.New: missing credentials: %s", strings.Join(missing, ", "))
	}

	c := &Client{
		creds:         opts.Credentials,
		geonamesURL:   orDefault(opts.GeonamesURL, DefaultGeonamesURL),
		weatherbitURL: strings.TrimSuffix(orDefault(opts.WeatherbitURL, DefaultWeatherbitURL), "/"),
		pixabayURL:    orDefault(opts.PixabayURL, DefaultPixabayURL),
		timeout:       opts.Timeout,
		http:          opts.HTTPClient,
		log:           opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// Geocode resolves free-text location to its best GeoNames match.
// Returns domain.ErrMissingInput for an empty location, domain.ErrNotFound
// when GeoNames has no match, and domain.ErrUpstream otherwise.
func (c *Client) Geocode(ctx context.Context, location string) (_ domain.GeoResult, err error) {
	defer c.observe(ctx, "geonames")(&err)

	location = strings.TrimSpace(location)
	if location == "" {
		return domain.GeoResult{}, fmt.Errorf("gateway.Client.Geocode: %w: location required", domain.ErrMissingInput)
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("maxRows", "1")
	q.Set("username", c.creds.GeonamesUser)

	var raw normalize.GeonamesResponse
	if err := c.getJSON(ctx, c.geonamesURL, q, &raw); err != nil {
		return domain.GeoResult{}, fmt.Errorf("gateway.Client.Geocode: %w", err)
	}

	geo, err := normalize.Geonames(raw)
	if err != nil {
		return domain.GeoResult{}, fmt.Errorf("gateway.Client.Geocode: %w", err)
	}
	return geo, nil
}

// Weather returns the representative day for a trip daysLeft days away.
// Trips within normalize.CurrentWeatherMaxDays use current conditions;
// later trips use the daily forecast.
func (c *Client) Weather(ctx context.Context, lat, lon string, daysLeft int) (_ domain.WeatherResult, err error) {
	defer c.observe(ctx, "weatherbit")(&err)

	if strings.TrimSpace(lat) == "" || strings.TrimSpace(lon) == "" {
		return domain.WeatherResult{}, fmt.Errorf("gateway.Client.Weather: %w: coordinates required", domain.ErrMissingInput)
	}

	endpoint := normalize.WeatherEndpointFor(daysLeft)

	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("key", c.creds.WeatherbitKey)
	q.Set("units", "M")

	var raw normalize.WeatherbitResponse
	if err := c.getJSON(ctx, c.weatherbitURL+"/"+endpoint.Path(), q, &raw); err != nil {
		return domain.WeatherResult{}, fmt.Errorf("gateway.Client.Weather: %w", err)
	}

	w, err := normalize.Weatherbit(endpoint, raw)
	if err != nil {
		return domain.WeatherResult{}, fmt.Errorf("gateway.Client.Weather: %w", err)
	}
	return w, nil
}

// Image returns a photo URL for query, or domain.PlaceholderImageURL when
// Pixabay has no hits. Only transport-level problems are errors.
func (c *Client) Image(ctx context.Context, query string) (_ string, err error) {
	defer c.observe(ctx, "pixabay")(&err)

	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("gateway.Client.Image: %w: query required", domain.ErrMissingInput)
	}

	q := url.Values{}
	q.Set("key", c.creds.PixabayKey)
	q.Set("q", query)
	q.Set("image_type", "photo")
	q.Set("per_page", "3")

	var raw normalize.PixabayResponse
	if err := c.getJSON(ctx, c.pixabayURL, q, &raw); err != nil {
		return "", fmt.Errorf("gateway.Client.Image: %w", err)
	}
	return normalize.Pixabay(raw), nil
}

// observe logs the duration and outcome of one upstream call.
// Usage: defer c.observe(ctx, "name")(&err)
func (c *Client) observe(ctx context.Context, provider string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		attrs := []any{
			"provider", provider,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if errp != nil && *errp != nil {
			level := slog.LevelWarn
			if errors.Is(*errp, domain.ErrNotFound) || errors.Is(*errp, domain.ErrMissingInput) {
				level = slog.LevelInfo
			}
			c.log.Log(ctx, level, "upstream call failed", append(attrs, "error", *errp)...)
			return
		}
		c.log.DebugContext(ctx, "upstream call", attrs...)
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
