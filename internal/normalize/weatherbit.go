package normalize

import (
	"fmt"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// WeatherEndpoint identifies which Weatherbit sub-endpoint produced a response.
// The two share an envelope but name the apparent temperature differently.
type WeatherEndpoint int

const (
	// WeatherCurrent is /v2.0/current.
	WeatherCurrent WeatherEndpoint = iota
	// WeatherForecast is /v2.0/forecast/daily.
	WeatherForecast
)

// CurrentWeatherMaxDays is the largest days-left value served from current
// conditions; anything further out uses the daily forecast.
const CurrentWeatherMaxDays = 7

// WeatherEndpointFor picks the sub-endpoint for a trip daysLeft days away.
func WeatherEndpointFor(daysLeft int) WeatherEndpoint {
	if daysLeft <= CurrentWeatherMaxDays {
		return WeatherCurrent
	}
	return WeatherForecast
}

// Path returns the endpoint path relative to the Weatherbit v2.0 base URL.
func (e WeatherEndpoint) Path() string {
	if e == WeatherForecast {
		return "forecast/daily"
	}
	return "current"
}

func (e WeatherEndpoint) String() string { return e.Path() }

// WeatherbitResponse is the envelope shared by /current and /forecast/daily.
type WeatherbitResponse struct {
	Data []WeatherbitObservation `json:"data"`
}

// WeatherbitObservation is one entry of WeatherbitResponse.Data.
// Fields that only one sub-endpoint populates are pointers.
type WeatherbitObservation struct {
	Temp       float64            `json:"temp"`
	AppTemp    *float64           `json:"app_temp,omitempty"`     // current only
	AppMaxTemp *float64           `json:"app_max_temp,omitempty"` // forecast only
	Precip     *float64           `json:"precip,omitempty"`
	Weather    *WeatherbitSummary `json:"weather,omitempty"`
}

// WeatherbitSummary is the nested "weather" object of an observation.
type WeatherbitSummary struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Weatherbit returns the first entry of resp as a WeatherResult.
// FeelsLike comes from app_temp for current conditions and from app_max_temp
// for the daily forecast. Missing precip is 0. An empty data array yields
// domain.ErrNotFound.
func Weatherbit(endpoint WeatherEndpoint, resp WeatherbitResponse) (domain.WeatherResult, error) {
	if len(resp.Data) == 0 {
		return domain.WeatherResult{}, fmt.Errorf("%w: no weatherbit %s data", domain.ErrNotFound, endpoint)
	}

	obs := resp.Data[0]
	out := domain.WeatherResult{
		Temp:   obs.Temp,
		Precip: deref(obs.Precip),
	}
	if obs.Weather != nil {
		out.Description = obs.Weather.Description
		out.Icon = obs.Weather.Icon
	}

	switch endpoint {
	case WeatherForecast:
		out.FeelsLike = deref(obs.AppMaxTemp)
	default:
		out.FeelsLike = deref(obs.AppTemp)
	}
	return out, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
