package domain

import "errors"

// ErrMissingInput is returned when a required field (location, departure
// date, coordinates, image query) is empty. No network call is made.
// Handlers should map this to HTTP 400.
var ErrMissingInput = errors.New("missing input")

// ErrInvalidDate is returned when the departure date is not a real date or
// resolves to exactly "now". Handlers should map this to HTTP 422.
var ErrInvalidDate = errors.New("invalid date")

// ErrDuplicateDate is returned when a trip for the same departure date is
// already stored. Handlers should map this to HTTP 409.
var ErrDuplicateDate = errors.New("duplicate date")

// ErrNotFound is returned by the gateway when an upstream answered
// successfully but had no match for the query.
var ErrNotFound = errors.New("not found")

// ErrUpstream is returned by the gateway for transport failures, non-2xx
// responses, and bodies that cannot be decoded.
var ErrUpstream = errors.New("upstream error")

// ErrLocationUnresolved is returned by the planner when geocoding fails for
// any reason (ErrNotFound or ErrUpstream).
var ErrLocationUnresolved = errors.New("location unresolved")

// ErrWeatherUnavailable is returned by the planner when the weather lookup
// fails. Weather has no fallback.
var ErrWeatherUnavailable = errors.New("weather unavailable")

// ErrNotPersisted is returned alongside a valid TripRecord when the trip was
// planned successfully but could not be written to the store.
var ErrNotPersisted = errors.New("trip not persisted")
