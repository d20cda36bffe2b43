package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// mockGateway is a hand-written test double for service.Gateway.
// Each method is a function field; set only the ones your test needs.
// calls records the order in which methods were invoked.
type mockGateway struct {
	mu      sync.Mutex
	calls   []string
	geocode func(ctx context.Context, location string) (domain.GeoResult, error)
	weather func(ctx context.Context, lat, lon string, daysLeft int) (domain.WeatherResult, error)
	image   func(ctx context.Context, query string) (string, error)
}

func (m *mockGateway) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockGateway) Geocode(ctx context.Context, location string) (domain.GeoResult, error) {
	m.record("geocode")
	return m.geocode(ctx, location)
}
func (m *mockGateway) Weather(ctx context.Context, lat, lon string, daysLeft int) (domain.WeatherResult, error) {
	m.record("weather")
	return m.weather(ctx, lat, lon, daysLeft)
}
func (m *mockGateway) Image(ctx context.Context, query string) (string, error) {
	m.record("image")
	return m.image(ctx, query)
}

// compile-time check: mockGateway must satisfy service.Gateway.
var _ service.Gateway = (*mockGateway)(nil)

// mockTripStore wraps a real in-memory store and lets a test override
// individual methods.
type mockTripStore struct {
	repo.TripStore
	append  func(ctx context.Context, trip domain.TripRecord) error
	hasDate func(ctx context.Context, date string) (bool, error)
}

func (m *mockTripStore) Append(ctx context.Context, trip domain.TripRecord) error {
	if m.append != nil {
		return m.append(ctx, trip)
	}
	return m.TripStore.Append(ctx, trip)
}

func (m *mockTripStore) HasDate(ctx context.Context, date string) (bool, error) {
	if m.hasDate != nil {
		return m.hasDate(ctx, date)
	}
	return m.TripStore.HasDate(ctx, date)
}

// ---- helpers ---------------------------------------------------------------

// fixedNow is mid-morning so "2026-10-28" is 9.6 days away and rounds up to 10.
var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

var parisGeo = domain.GeoResult{Name: "Paris", Country: "France", Lat: "48.8589", Lng: "2.3470"}

var parisWeather = domain.WeatherResult{Temp: 11.4, Description: "Light rain", Icon: "r01d", FeelsLike: 12.9, Precip: 1.5}

// happyGateway answers every lookup successfully.
func happyGateway() *mockGateway {
	return &mockGateway{
		geocode: func(context.Context, string) (domain.GeoResult, error) { return parisGeo, nil },
		weather: func(context.Context, string, string, int) (domain.WeatherResult, error) {
			return parisWeather, nil
		},
		image: func(context.Context, string) (string, error) { return "https://cdn.example/paris.jpg", nil },
	}
}

func newPlanner(gw service.Gateway, store repo.TripStore) *service.TripPlanner {
	return service.NewTripPlanner(gw, store,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func memoryStore() repo.TripStore {
	return repo.NewTripStore(repo.NewMemoryKV())
}

func parisInput() domain.PlanInput {
	return domain.PlanInput{Location: "Paris", DepartureDate: "2026-10-28"}
}

// ---- happy path ------------------------------------------------------------

func TestPlan_Paris_TenDaysOut(t *testing.T) {
	gw := happyGateway()
	var gotLat, gotLon string
	var gotDays int
	gw.weather = func(_ context.Context, lat, lon string, days int) (domain.WeatherResult, error) {
		gotLat, gotLon, gotDays = lat, lon, days
		return parisWeather, nil
	}
	store := memoryStore()
	id := uuid.New()
	p := service.NewTripPlanner(gw, store,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithIDGenerator(func() uuid.UUID { return id }),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	got, err := p.Plan(context.Background(), parisInput())

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Paris", got.City)
	assert.Equal(t, "France", got.Country)
	assert.Equal(t, "2026-10-28", got.DepartureDate)
	assert.Equal(t, 10, got.DaysLeft)
	assert.Equal(t, parisWeather, got.Weather)
	assert.Equal(t, "https://cdn.example/paris.jpg", got.Image)
	assert.Equal(t, fixedNow, got.CreatedAt)

	assert.Equal(t, "48.8589", gotLat)
	assert.Equal(t, "2.3470", gotLon)
	assert.Equal(t, 10, gotDays, "weather sees the same daysLeft the record stores")
	assert.Equal(t, []string{"geocode", "weather", "image"}, gw.Calls())

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1, "appended exactly once")
	assert.Equal(t, got, saved[0])
}

func TestPlan_TrimsLocation_AndQueriesImageWithIt(t *testing.T) {
	gw := happyGateway()
	var geoQuery, imgQuery string
	gw.geocode = func(_ context.Context, loc string) (domain.GeoResult, error) {
		geoQuery = loc
		return parisGeo, nil
	}
	gw.image = func(_ context.Context, q string) (string, error) {
		imgQuery = q
		return "x.jpg", nil
	}

	_, err := newPlanner(gw, memoryStore()).Plan(context.Background(), domain.PlanInput{Location: "  Paris  ", DepartureDate: "2026-10-28"})

	require.NoError(t, err)
	assert.Equal(t, "Paris", geoQuery)
	assert.Equal(t, "Paris", imgQuery)
}

func TestPlan_PastDate_StillPlans(t *testing.T) {
	p := newPlanner(happyGateway(), memoryStore())

	got, err := p.Plan(context.Background(), domain.PlanInput{Location: "Paris", DepartureDate: "2026-10-01"})

	require.NoError(t, err)
	assert.Equal(t, -17, got.DaysLeft)
}

// ---- validation ------------------------------------------------------------

func TestPlan_MissingInput(t *testing.T) {
	cases := []domain.PlanInput{
		{Location: "", DepartureDate: "2026-10-28"},
		{Location: "   ", DepartureDate: "2026-10-28"},
		{Location: "Paris", DepartureDate: ""},
		{},
	}
	for _, in := range cases {
		gw := happyGateway()
		_, err := newPlanner(gw, memoryStore()).Plan(context.Background(), in)

		assert.ErrorIs(t, err, domain.ErrMissingInput, "%+v", in)
		assert.Empty(t, gw.Calls())
	}
}

func TestPlan_InvalidDate(t *testing.T) {
	for _, date := range []string{"next tuesday", "2026-02-30", fixedNow.Format(time.RFC3339)} {
		gw := happyGateway()
		_, err := newPlanner(gw, memoryStore()).Plan(context.Background(), domain.PlanInput{Location: "Paris", DepartureDate: date})

		assert.ErrorIs(t, err, domain.ErrInvalidDate, date)
		assert.Empty(t, gw.Calls())
	}
}

func TestPlan_DuplicateDate_NoNetworkCalls(t *testing.T) {
	store := memoryStore()
	require.NoError(t, store.Append(context.Background(), domain.TripRecord{City: "Lyon", DepartureDate: "2026-10-28"}))
	gw := happyGateway()

	got, err := newPlanner(gw, store).Plan(context.Background(), parisInput())

	require.ErrorIs(t, err, domain.ErrDuplicateDate)
	assert.Equal(t, domain.TripRecord{}, got)
	assert.Empty(t, gw.Calls(), "duplicate check must run before any network call")

	var perr *service.PlanError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, service.StageValidating, perr.Stage)
}

func TestPlan_DuplicateCheckFailure_StopsBeforeLookups(t *testing.T) {
	storeErr := errors.New("read timeout")
	appended := false
	store := &mockTripStore{
		TripStore: memoryStore(),
		hasDate:   func(context.Context, string) (bool, error) { return false, storeErr },
		append: func(context.Context, domain.TripRecord) error {
			appended = true
			return nil
		},
	}
	gw := happyGateway()

	_, err := newPlanner(gw, store).Plan(context.Background(), parisInput())

	require.ErrorIs(t, err, storeErr)
	var perr *service.PlanError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, service.StageValidating, perr.Stage)
	assert.Empty(t, gw.Calls(), "no lookup may run without a duplicate check")
	assert.False(t, appended)
}

func TestPlan_TransientDuplicateCheckFailure_NeverSavesSecondRecord(t *testing.T) {
	ctx := context.Background()
	base := memoryStore()
	lyon := domain.TripRecord{City: "Lyon", Country: "France", DepartureDate: "2026-10-28"}
	require.NoError(t, base.Append(ctx, lyon))

	failures := 1
	store := &mockTripStore{
		TripStore: base,
		hasDate: func(ctx context.Context, date string) (bool, error) {
			if failures > 0 {
				failures--
				return false, errors.New("read timeout")
			}
			return base.HasDate(ctx, date)
		},
	}
	gw := happyGateway()
	planner := newPlanner(gw, store)

	_, err := planner.Plan(ctx, parisInput())
	require.Error(t, err)

	_, err = planner.Plan(ctx, parisInput())
	require.ErrorIs(t, err, domain.ErrDuplicateDate)

	assert.Empty(t, gw.Calls())
	saved, err := base.List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Lyon", saved[0].City)
}

func TestPlan_TimestampInput_KeysOnDateAsWritten(t *testing.T) {
	store := memoryStore()
	in := domain.PlanInput{Location: "Paris", DepartureDate: "2026-10-28T20:00:00-05:00"}

	got, err := newPlanner(happyGateway(), store).Plan(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "2026-10-28", got.DepartureDate)
	dup, err := store.HasDate(context.Background(), "2026-10-28")
	require.NoError(t, err)
	assert.True(t, dup)
}

// ---- geocoding -------------------------------------------------------------

func TestPlan_GeocodeNotFound_StopsPipeline(t *testing.T) {
	gw := happyGateway()
	gw.geocode = func(context.Context, string) (domain.GeoResult, error) {
		return domain.GeoResult{}, domain.ErrNotFound
	}
	store := memoryStore()

	_, err := newPlanner(gw, store).Plan(context.Background(), parisInput())

	require.ErrorIs(t, err, domain.ErrLocationUnresolved)
	assert.ErrorIs(t, err, domain.ErrNotFound, "cause is preserved")
	assert.Equal(t, []string{"geocode"}, gw.Calls(), "weather and image must not be called")

	saved, _ := store.List(context.Background())
	assert.Empty(t, saved)
}

func TestPlan_GeocodeUpstreamError(t *testing.T) {
	gw := happyGateway()
	gw.geocode = func(context.Context, string) (domain.GeoResult, error) {
		return domain.GeoResult{}, domain.ErrUpstream
	}

	_, err := newPlanner(gw, memoryStore()).Plan(context.Background(), parisInput())

	assert.ErrorIs(t, err, domain.ErrLocationUnresolved)
}

// ---- weather ---------------------------------------------------------------

func TestPlan_WeatherFailure_IsFatal(t *testing.T) {
	gw := happyGateway()
	gw.weather = func(context.Context, string, string, int) (domain.WeatherResult, error) {
		return domain.WeatherResult{}, domain.ErrUpstream
	}
	store := memoryStore()

	got, err := newPlanner(gw, store).Plan(context.Background(), parisInput())

	require.ErrorIs(t, err, domain.ErrWeatherUnavailable)
	assert.Equal(t, domain.TripRecord{}, got)
	assert.Equal(t, []string{"geocode", "weather"}, gw.Calls())

	saved, _ := store.List(context.Background())
	assert.Empty(t, saved)
}

// ---- image -----------------------------------------------------------------

func TestPlan_ImageFailure_UsesPlaceholder(t *testing.T) {
	gw := happyGateway()
	gw.image = func(context.Context, string) (string, error) {
		return "", errors.New("connection reset by peer")
	}

	got, err := newPlanner(gw, memoryStore()).Plan(context.Background(), parisInput())

	require.NoError(t, err)
	assert.Equal(t, domain.PlaceholderImageURL, got.Image)
}

func TestPlan_EmptyImage_UsesPlaceholder(t *testing.T) {
	gw := happyGateway()
	gw.image = func(context.Context, string) (string, error) { return "", nil }

	got, err := newPlanner(gw, memoryStore()).Plan(context.Background(), parisInput())

	require.NoError(t, err)
	assert.Equal(t, domain.PlaceholderImageURL, got.Image)
}

// ---- persistence -----------------------------------------------------------

func TestPlan_PersistenceFailure_ReturnsRecord(t *testing.T) {
	storeErr := errors.New("quota exceeded")
	store := &mockTripStore{
		TripStore: memoryStore(),
		append:    func(context.Context, domain.TripRecord) error { return storeErr },
	}

	got, err := newPlanner(happyGateway(), store).Plan(context.Background(), parisInput())

	require.ErrorIs(t, err, domain.ErrNotPersisted)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, "Paris", got.City, "computed record is still returned")
	assert.Equal(t, 10, got.DaysLeft)

	var perr *service.PlanError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, service.StagePersisting, perr.Stage)
}

// ---- concurrency -----------------------------------------------------------

func TestPlan_ConcurrentSameDate_SavesOnce(t *testing.T) {
	gw := happyGateway()
	// Slow geocode widens the window between the duplicate check and append.
	gw.geocode = func(context.Context, string) (domain.GeoResult, error) {
		time.Sleep(20 * time.Millisecond)
		return parisGeo, nil
	}
	store := memoryStore()
	p := newPlanner(gw, store)

	const n = 5
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Plan(context.Background(), parisInput())
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateDate):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

// ---- list / remove / clear -------------------------------------------------

func TestTripPlanner_ListRemoveClear(t *testing.T) {
	store := memoryStore()
	p := newPlanner(happyGateway(), store)
	ctx := context.Background()

	_, err := p.Plan(ctx, parisInput())
	require.NoError(t, err)
	_, err = p.Plan(ctx, domain.PlanInput{Location: "Paris", DepartureDate: "2026-11-05"})
	require.NoError(t, err)

	trips, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)

	require.NoError(t, p.Remove(ctx, 0))
	require.NoError(t, p.Remove(ctx, 7), "stale index is a no-op")
	trips, err = p.List(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "2026-11-05", trips[0].DepartureDate)

	require.NoError(t, p.Clear(ctx))
	trips, err = p.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}
