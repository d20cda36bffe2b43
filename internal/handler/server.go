// Package handler implements the HTTP surface of the trip planner: the three
// upstream proxy endpoints, the trip endpoints backed by the planner, and
// health/spec endpoints. All handlers are methods on Server.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// TripPlanner defines the trip operations the handlers depend on.
// It is declared here, in the consumer, so tests can inject a mock.
type TripPlanner interface {
	Plan(ctx context.Context, in domain.PlanInput) (domain.TripRecord, error)
	List(ctx context.Context) ([]domain.TripRecord, error)
	Remove(ctx context.Context, index int) error
	Clear(ctx context.Context) error
}

// Gateway defines the upstream lookups exposed by the proxy endpoints.
type Gateway interface {
	Geocode(ctx context.Context, location string) (domain.GeoResult, error)
	Weather(ctx context.Context, lat, lon string, daysLeft int) (domain.WeatherResult, error)
	Image(ctx context.Context, query string) (string, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips    TripPlanner
	gw       Gateway
	log      *slog.Logger
	validate *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(trips TripPlanner, gw Gateway, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		trips:    trips,
		gw:       gw,
		log:      log,
		validate: newValidator(),
	}
}

// newValidator reports fields by their JSON name so validation messages
// match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Routes returns a router with every endpoint registered. Middleware is the
// caller's concern; main.go wraps this router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Post("/geonames", s.PostGeonames)
		r.Post("/weatherbit", s.PostWeatherbit)
		r.Post("/pixabay", s.PostPixabay)

		r.Post("/trips", s.CreateTrip)
		r.Get("/trips", s.ListTrips)
		r.Get("/trips/export", s.ExportTrips)
		r.Delete("/trips", s.ClearTrips)
		r.Delete("/trips/{index}", s.DeleteTrip)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	return r
}
