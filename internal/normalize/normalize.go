// Package normalize maps the raw response shapes of the three upstream
// providers (GeoNames, Weatherbit, Pixabay) into the internal domain types.
// Functions here are pure: no I/O, no logging, no defaults beyond the ones
// documented on each function.
package normalize

import (
	"fmt"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// GeonamesResponse is the body of GET /searchJSON.
// Status is only present when GeoNames reports an error (bad username,
// exhausted credits) with HTTP 200.
type GeonamesResponse struct {
	Geonames []GeonamesPlace `json:"geonames"`
	Status   *GeonamesStatus `json:"status,omitempty"`
}

// GeonamesPlace is one match in a GeonamesResponse.
type GeonamesPlace struct {
	Name        string `json:"name"`
	CountryName string `json:"countryName"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`
}

// GeonamesStatus is the error envelope GeoNames embeds in a 200 response.
type GeonamesStatus struct {
	Message string `json:"message"`
	Value   int    `json:"value"`
}

// Geonames returns the first match of resp.
// An empty match list yields domain.ErrNotFound; an error envelope yields
// domain.ErrUpstream.
func Geonames(resp GeonamesResponse) (domain.GeoResult, error) {
	if resp.Status != nil {
		return domain.GeoResult{}, fmt.Errorf("%w: geonames status %d: %s", domain.ErrUpstream, resp.Status.Value, resp.Status.Message)
	}
	if len(resp.Geonames) == 0 {
		return domain.GeoResult{}, fmt.Errorf("%w: no geonames match", domain.ErrNotFound)
	}

	p := resp.Geonames[0]
	return domain.GeoResult{
		Name:    p.Name,
		Country: p.CountryName,
		Lat:     p.Lat,
		Lng:     p.Lng,
	}, nil
}
