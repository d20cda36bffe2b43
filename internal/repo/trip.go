package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// TripsKey is the KV key holding the serialized trip sequence.
const TripsKey = "trips"

// TripStore defines the persistence operations for the saved trip sequence.
// Insertion order is display order; records are addressed by index.
// The service layer depends on this interface, which allows the planner to
// be unit-tested with a mock.
type TripStore interface {
	// Append adds trip to the end of the sequence.
	Append(ctx context.Context, trip domain.TripRecord) error

	// List returns the sequence in insertion order. Never nil.
	List(ctx context.Context) ([]domain.TripRecord, error)

	// RemoveAt deletes the record at index. An out-of-range index is a no-op.
	RemoveAt(ctx context.Context, index int) error

	// HasDate reports whether a record with the given departure date exists.
	// date may be any layout domain.NormalizeDepartureDate accepts.
	HasDate(ctx context.Context, date string) (bool, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}

// kvTripStore serializes the whole sequence as a JSON array under TripsKey.
// mu makes each operation's read-modify-write atomic with respect to the
// others in this process.
type kvTripStore struct {
	mu sync.Mutex
	kv KV
}

// NewTripStore constructs a TripStore on top of kv.
func NewTripStore(kv KV) TripStore {
	return &kvTripStore{kv: kv}
}

// Append adds trip to the end of the stored sequence.
func (s *kvTripStore) Append(ctx context.Context, trip domain.TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("repo.TripStore.Append: %w", err)
	}
	if err := s.save(ctx, append(trips, trip)); err != nil {
		return fmt.Errorf("repo.TripStore.Append: %w", err)
	}
	return nil
}

// List returns every stored trip in insertion order.
func (s *kvTripStore) List(ctx context.Context) ([]domain.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.TripStore.List: %w", err)
	}
	return trips, nil
}

// RemoveAt deletes the record at index and shifts later records down by one.
func (s *kvTripStore) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("repo.TripStore.RemoveAt: %w", err)
	}
	if index < 0 || index >= len(trips) {
		return nil
	}

	trips = append(trips[:index], trips[index+1:]...)
	if err := s.save(ctx, trips); err != nil {
		return fmt.Errorf("repo.TripStore.RemoveAt: %w", err)
	}
	return nil
}

// HasDate reports whether any stored trip departs on date.
func (s *kvTripStore) HasDate(ctx context.Context, date string) (bool, error) {
	want, ok := domain.NormalizeDepartureDate(date)
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.load(ctx)
	if err != nil {
		return false, fmt.Errorf("repo.TripStore.HasDate: %w", err)
	}
	for _, t := range trips {
		if got, ok := domain.NormalizeDepartureDate(t.DepartureDate); ok && got == want {
			return true, nil
		}
	}
	return false, nil
}

// Clear deletes the stored sequence.
func (s *kvTripStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, TripsKey); err != nil {
		return fmt.Errorf("repo.TripStore.Clear: %w", err)
	}
	return nil
}

// load reads and decodes the sequence. A missing key is an empty sequence.
func (s *kvTripStore) load(ctx context.Context) ([]domain.TripRecord, error) {
	raw, found, err := s.kv.Get(ctx, TripsKey)
	if err != nil {
		return nil, err
	}
	trips := []domain.TripRecord{}
	if !found || len(raw) == 0 {
		return trips, nil
	}
	if err := json.Unmarshal(raw, &trips); err != nil {
		return nil, fmt.Errorf("decode %s: %w", TripsKey, err)
	}
	if trips == nil {
		// stored literal "null"
		trips = []domain.TripRecord{}
	}
	return trips, nil
}

func (s *kvTripStore) save(ctx context.Context, trips []domain.TripRecord) error {
	raw, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("encode %s: %w", TripsKey, err)
	}
	return s.kv.Set(ctx, TripsKey, raw)
}
