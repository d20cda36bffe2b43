// Package domain contains the core data types for the trip planner.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (normalize, gateway, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for departure dates everywhere:
// request bodies, persisted records, and the duplicate-date check.
const DateLayout = "2006-01-02"

// PlaceholderImageURL is served in place of a destination photo whenever the
// image provider has no match or cannot be reached. It is a valid result.
const PlaceholderImageURL = "/assets/default.jpg"

// GeoResult is a resolved place as returned by the geocoding provider.
// Coordinates are kept as the provider's decimal strings and passed through
// unchanged to the weather provider.
type GeoResult struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Lat     string `json:"lat"`
	Lng     string `json:"lng"`
}

// WeatherResult is the representative day of a weather lookup.
type WeatherResult struct {
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	FeelsLike   float64 `json:"feels_like"`
	Precip      float64 `json:"precip"`
}

// TripRecord is a finalized trip card.
// DepartureDate is the natural key: at most one record per date is stored.
type TripRecord struct {
	ID            uuid.UUID     `json:"id"`
	City          string        `json:"city"`
	Country       string        `json:"country"`
	DepartureDate string        `json:"departure_date"` // DateLayout formatted
	DaysLeft      int           `json:"days_left"`
	Weather       WeatherResult `json:"weather"`
	Image         string        `json:"image"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PlanInput is the raw form input accepted by the planner.
type PlanInput struct {
	Location      string
	DepartureDate string
}
