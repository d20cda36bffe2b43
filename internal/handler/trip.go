package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

type createTripRequest struct {
	Location      string `json:"location" validate:"required"`
	DepartureDate string `json:"departure_date" validate:"required"`
}

// tripResponse is the wire form of a domain.TripRecord.
type tripResponse struct {
	ID            openapi_types.UUID   `json:"id"`
	City          string               `json:"city"`
	Country       string               `json:"country"`
	DepartureDate openapi_types.Date   `json:"departure_date"`
	DaysLeft      int                  `json:"days_left"`
	Weather       domain.WeatherResult `json:"weather"`
	Image         string               `json:"image"`
	CreatedAt     time.Time            `json:"created_at"`
}

// createTripResponse adds the persistence outcome to the planned trip.
type createTripResponse struct {
	tripResponse
	Saved   bool   `json:"saved"`
	Warning string `json:"warning,omitempty"`
}

// CreateTrip handles POST /api/trips.
// 201 when the trip was planned and saved; 200 with saved=false when it was
// planned but the store rejected it.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	trip, err := s.trips.Plan(r.Context(), domain.PlanInput{
		Location:      req.Location,
		DepartureDate: req.DepartureDate,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createTripResponse{tripResponse: tripToResponse(trip), Saved: true})
	case errors.Is(err, domain.ErrNotPersisted):
		writeJSON(w, http.StatusOK, createTripResponse{
			tripResponse: tripToResponse(trip),
			Saved:        false,
			Warning:      service.Message(err),
		})
	default:
		s.writePlanError(w, r, err)
	}
}

// ListTrips handles GET /api/trips. The body is always a JSON array.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteTrip handles DELETE /api/trips/{index}.
// An index past the end is a no-op and still answers 204.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_input", "index must be an integer")
		return
	}

	if err := s.trips.Remove(r.Context(), index); err != nil {
		s.writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearTrips handles DELETE /api/trips.
func (s *Server) ClearTrips(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Clear(r.Context()); err != nil {
		s.writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writePlanError maps a planner failure onto a status code and the
// user-facing message for its kind.
func (s *Server) writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	msg := service.Message(err)
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		writeError(w, http.StatusBadRequest, "missing_input", msg)
	case errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, "invalid_date", msg)
	case errors.Is(err, domain.ErrDuplicateDate):
		writeError(w, http.StatusConflict, "duplicate_date", msg)
	case errors.Is(err, domain.ErrLocationUnresolved):
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "location_unresolved", msg)
	case errors.Is(err, domain.ErrWeatherUnavailable):
		writeError(w, http.StatusBadGateway, "weather_unavailable", msg)
	default:
		s.writeInternal(w, r, err)
	}
}

func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// tripToResponse converts a domain.TripRecord into its wire form.
func tripToResponse(t domain.TripRecord) tripResponse {
	resp := tripResponse{
		ID:        t.ID,
		City:      t.City,
		Country:   t.Country,
		DaysLeft:  t.DaysLeft,
		Weather:   t.Weather,
		Image:     t.Image,
		CreatedAt: t.CreatedAt,
	}
	if d, err := time.Parse(domain.DateLayout, t.DepartureDate); err == nil {
		resp.DepartureDate = openapi_types.Date{Time: d}
	}
	return resp
}
