package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// ProxyClient satisfies the same lookups as Client by calling the proxy
// endpoints of a running trip-planner server (POST /api/geonames,
// /api/weatherbit, /api/pixabay). It holds no upstream credentials.
type ProxyClient struct {
	baseURL string
	http    *http.Client
}

// NewProxyClient returns a ProxyClient for the server at baseURL
// (e.g. "http://localhost:8080"). A nil httpClient uses http.DefaultClient.
func NewProxyClient(baseURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProxyClient{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// Geocode calls POST /api/geonames.
func (p *ProxyClient) Geocode(ctx context.Context, location string) (domain.GeoResult, error) {
	var out domain.GeoResult
	if err := p.post(ctx, "/api/geonames", map[string]any{"location": location}, &out); err != nil {
		return domain.GeoResult{}, fmt.Errorf("gateway.ProxyClient.Geocode: %w", err)
	}
	return out, nil
}

// Weather calls POST /api/weatherbit.
func (p *ProxyClient) Weather(ctx context.Context, lat, lon string, daysLeft int) (domain.WeatherResult, error) {
	var out domain.WeatherResult
	body := map[string]any{"lat": lat, "lon": lon, "days": daysLeft}
	if err := p.post(ctx, "/api/weatherbit", body, &out); err != nil {
		return domain.WeatherResult{}, fmt.Errorf("gateway.ProxyClient.Weather: %w", err)
	}
	return out, nil
}

// Image calls POST /api/pixabay. The endpoint answers with a bare JSON string.
func (p *ProxyClient) Image(ctx context.Context, query string) (string, error) {
	var out string
	if err := p.post(ctx, "/api/pixabay", map[string]any{"query": query}, &out); err != nil {
		return "", fmt.Errorf("gateway.ProxyClient.Image: %w", err)
	}
	if out == "" {
		return domain.PlaceholderImageURL, nil
	}
	return out, nil
}

// post sends body as JSON and decodes a 200 response into out.
// Proxy status codes map back onto the domain sentinels: 400 is
// ErrMissingInput, 404 is ErrNotFound, anything else is ErrUpstream.
func (p *ProxyClient) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", domain.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %w", domain.ErrMissingInput, statusErr)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", domain.ErrNotFound, statusErr)
		default:
			return fmt.Errorf("%w: %w", domain.ErrUpstream, statusErr)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrUpstream, err)
	}
	return nil
}
