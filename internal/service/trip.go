// Package service contains the business logic for the trip planner.
// TripPlanner turns raw form input into a finalized, persisted TripRecord by
// driving the gateway lookups in order and applying the failure policy.
// No HTTP and no storage details live here: the planner depends on the
// Gateway interface and on repo.TripStore.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// Gateway defines the upstream lookups the planner depends on.
// *gateway.Client and *gateway.ProxyClient both satisfy it.
type Gateway interface {
	Geocode(ctx context.Context, location string) (domain.GeoResult, error)
	Weather(ctx context.Context, lat, lon string, daysLeft int) (domain.WeatherResult, error)
	Image(ctx context.Context, query string) (string, error)
}

// Option customizes a TripPlanner.
type Option func(*TripPlanner)

// WithClock overrides the source of "now" used for the countdown.
func WithClock(now func() time.Time) Option {
	return func(p *TripPlanner) { p.now = now }
}

// WithLogger sets the logger for stage transitions and absorbed failures.
func WithLogger(log *slog.Logger) Option {
	return func(p *TripPlanner) { p.log = log }
}

// WithIDGenerator overrides how new trip IDs are minted.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(p *TripPlanner) { p.newID = newID }
}

// TripPlanner implements the trip-planning pipeline.
type TripPlanner struct {
	gw    Gateway
	store repo.TripStore
	locks *dateLocks
	now   func() time.Time
	newID func() uuid.UUID
	log   *slog.Logger
}

// NewTripPlanner constructs a TripPlanner backed by gw and store.
func NewTripPlanner(gw Gateway, store repo.TripStore, opts ...Option) *TripPlanner {
	p := &TripPlanner{
		gw:    gw,
		store: store,
		locks: newDateLocks(),
		now:   time.Now,
		newID: uuid.New,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan validates in, resolves the location, fetches weather and an image,
// and appends the resulting trip to the store.
//
// Failures are returned as *PlanError wrapping one of domain.ErrMissingInput,
// domain.ErrInvalidDate, domain.ErrDuplicateDate, domain.ErrLocationUnresolved
// or domain.ErrWeatherUnavailable, and the returned record is zero.
// An image failure never fails the plan; the placeholder image is used.
// A store failure returns the complete record together with a *PlanError
// wrapping domain.ErrNotPersisted.
func (p *TripPlanner) Plan(ctx context.Context, in domain.PlanInput) (domain.TripRecord, error) {
	p.enter(ctx, StageValidating)

	location := strings.TrimSpace(in.Location)
	dateText := strings.TrimSpace(in.DepartureDate)
	if location == "" || dateText == "" {
		return p.fail(ctx, StageValidating, false, fmt.Errorf("%w: location and departure date are required", domain.ErrMissingInput))
	}

	countdown := domain.DaysUntil(dateText, p.now())
	date, ok := domain.NormalizeDepartureDate(dateText)
	if !countdown.IsValid || !ok {
		return p.fail(ctx, StageValidating, false, fmt.Errorf("%w: %q", domain.ErrInvalidDate, dateText))
	}

	// Held until the record is persisted so two plans for the same date
	// cannot both pass the duplicate check.
	unlock := p.locks.lock(date)
	defer unlock()

	dup, err := p.store.HasDate(ctx, date)
	if err != nil {
		// Without an answer the date may already be taken; stop before any
		// lookup rather than risk a second record for it.
		return p.fail(ctx, StageValidating, false, fmt.Errorf("duplicate check for %s: %w", date, err))
	}
	if dup {
		return p.fail(ctx, StageValidating, countdown.IsPast, fmt.Errorf("%w: a trip on %s is already saved", domain.ErrDuplicateDate, date))
	}

	p.enter(ctx, StageGeocoding)
	geo, err := p.gw.Geocode(ctx, location)
	if err != nil {
		return p.fail(ctx, StageGeocoding, countdown.IsPast, fmt.Errorf("%w: %w", domain.ErrLocationUnresolved, err))
	}

	p.enter(ctx, StageFetchingWeather)
	weather, err := p.gw.Weather(ctx, geo.Lat, geo.Lng, countdown.DaysLeft)
	if err != nil {
		return p.fail(ctx, StageFetchingWeather, countdown.IsPast, fmt.Errorf("%w: %w", domain.ErrWeatherUnavailable, err))
	}

	p.enter(ctx, StageFetchingImage)
	image, err := p.gw.Image(ctx, location)
	if err != nil || image == "" {
		p.log.WarnContext(ctx, "image lookup failed, using placeholder", "location", location, "error", err)
		image = domain.PlaceholderImageURL
	}

	trip := domain.TripRecord{
		ID:            p.newID(),
		City:          geo.Name,
		Country:       geo.Country,
		DepartureDate: date,
		DaysLeft:      countdown.DaysLeft,
		Weather:       weather,
		Image:         image,
		CreatedAt:     p.now().UTC(),
	}

	p.enter(ctx, StagePersisting)
	if err := p.store.Append(ctx, trip); err != nil {
		p.log.ErrorContext(ctx, "trip not persisted", "trip_id", trip.ID, "error", err)
		return trip, &PlanError{
			Stage: StagePersisting,
			Past:  countdown.IsPast,
			Err:   fmt.Errorf("service.TripPlanner.Plan: %w: %w", domain.ErrNotPersisted, err),
		}
	}

	p.enter(ctx, StageDone)
	return trip, nil
}

// List returns every saved trip in display order.
// Always returns a non-nil slice so callers can safely range over it.
func (p *TripPlanner) List(ctx context.Context) ([]domain.TripRecord, error) {
	trips, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripPlanner.List: %w", err)
	}
	if trips == nil {
		return []domain.TripRecord{}, nil
	}
	return trips, nil
}

// Remove deletes the saved trip at index. Stale indices are a no-op.
func (p *TripPlanner) Remove(ctx context.Context, index int) error {
	if err := p.store.RemoveAt(ctx, index); err != nil {
		return fmt.Errorf("service.TripPlanner.Remove: %w", err)
	}
	return nil
}

// Clear deletes every saved trip.
func (p *TripPlanner) Clear(ctx context.Context) error {
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("service.TripPlanner.Clear: %w", err)
	}
	return nil
}

func (p *TripPlanner) enter(ctx context.Context, s Stage) {
	p.log.DebugContext(ctx, "plan stage", "stage", s.String())
}

func (p *TripPlanner) fail(ctx context.Context, s Stage, past bool, err error) (domain.TripRecord, error) {
	perr := &PlanError{Stage: s, Past: past, Err: fmt.Errorf("service.TripPlanner.Plan: %w", err)}
	level := slog.LevelInfo
	if errors.Is(err, domain.ErrLocationUnresolved) || errors.Is(err, domain.ErrWeatherUnavailable) {
		level = slog.LevelWarn
	}
	p.log.Log(ctx, level, "plan failed", "stage", s.String(), "error", perr.Err)
	return domain.TripRecord{}, perr
}
