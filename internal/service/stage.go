package service

import (
	"errors"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Stage is a step of TripPlanner.Plan.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageGeocoding
	StageFetchingWeather
	StageFetchingImage
	StagePersisting
	StageDone
)

var stageNames = [...]string{
	StageIdle:            "idle",
	StageValidating:      "validating",
	StageGeocoding:       "geocoding",
	StageFetchingWeather: "fetching_weather",
	StageFetchingImage:   "fetching_image",
	StagePersisting:      "persisting",
	StageDone:            "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// PlanError is the failure returned by TripPlanner.Plan.
// Stage is where the pipeline stopped; Past reports whether the requested
// departure date was already behind us, which changes the user message.
type PlanError struct {
	Stage Stage
	Past  bool
	Err   error
}

func (e *PlanError) Error() string { return e.Err.Error() }

func (e *PlanError) Unwrap() error { return e.Err }

// Message returns the single user-facing sentence for this failure.
func (e *PlanError) Message() string {
	switch {
	case errors.Is(e.Err, domain.ErrMissingInput):
		return "Please fill all fields"
	case errors.Is(e.Err, domain.ErrInvalidDate):
		return "Invalid date selected"
	case errors.Is(e.Err, domain.ErrDuplicateDate):
		return "A trip is already saved for this date"
	case errors.Is(e.Err, domain.ErrNotPersisted):
		return "Trip planned but could not be saved"
	case e.Past:
		return "Cannot plan past trips"
	case errors.Is(e.Err, domain.ErrLocationUnresolved):
		return "Location not found. Check the spelling and try again."
	case errors.Is(e.Err, domain.ErrWeatherUnavailable):
		return "Failed to fetch weather data. Try again."
	default:
		return "Failed to fetch data. Try again."
	}
}

// Message returns the user-facing sentence for any error from the planner,
// falling back to a generic message for errors that are not a *PlanError.
func Message(err error) string {
	var perr *PlanError
	if errors.As(err, &perr) {
		return perr.Message()
	}
	return "Something went wrong. Try again."
}
