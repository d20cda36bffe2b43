package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// coordinate accepts a latitude or longitude as either a JSON string
// ("48.8589", as GeoNames returns it) or a JSON number (48.8589).
type coordinate string

func (c *coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = coordinate(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("coordinate must be a number or numeric string")
	}
	*c = coordinate(n.String())
	return nil
}

type geonamesRequest struct {
	Location string `json:"location" validate:"required"`
}

type weatherbitRequest struct {
	Lat  coordinate `json:"lat" validate:"required"`
	Lon  coordinate `json:"lon" validate:"required"`
	Days int        `json:"days"`
}

type pixabayRequest struct {
	Query string `json:"query" validate:"required"`
}

// PostGeonames handles POST /api/geonames.
// 200 with a GeoResult; 400 without a location; 404 when nothing matches.
func (s *Server) PostGeonames(w http.ResponseWriter, r *http.Request) {
	var req geonamesRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	geo, err := s.gw.Geocode(r.Context(), req.Location)
	if err != nil {
		s.writeGatewayError(w, r, err, "Location not found", "Failed to fetch location data")
		return
	}
	writeJSON(w, http.StatusOK, geo)
}

// PostWeatherbit handles POST /api/weatherbit.
// 200 with a WeatherResult; 400 without coordinates; 404 when the provider
// has no data for the point.
func (s *Server) PostWeatherbit(w http.ResponseWriter, r *http.Request) {
	var req weatherbitRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	weather, err := s.gw.Weather(r.Context(), string(req.Lat), string(req.Lon), req.Days)
	if err != nil {
		s.writeGatewayError(w, r, err, "Weather data not found", "Failed to fetch weather data")
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

// PostPixabay handles POST /api/pixabay.
// 200 with a bare JSON string URL (the placeholder when nothing matches);
// 400 without a query.
func (s *Server) PostPixabay(w http.ResponseWriter, r *http.Request) {
	var req pixabayRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	url, err := s.gw.Image(r.Context(), req.Query)
	if err != nil {
		s.writeGatewayError(w, r, err, "Image not found", "Failed to fetch image")
		return
	}
	writeJSON(w, http.StatusOK, url)
}

// writeGatewayError maps gateway sentinels onto proxy status codes.
// Upstream details are logged, never returned to the client.
func (s *Server) writeGatewayError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, upstreamMsg string) {
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		writeError(w, http.StatusBadRequest, "missing_input", "required field is empty")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", notFoundMsg)
	default:
		s.log.ErrorContext(r.Context(), "proxy upstream failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "upstream_error", upstreamMsg)
	}
}
