package domain

import (
	"math"
	"strings"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

// Countdown is the result of DaysUntil.
type Countdown struct {
	DaysLeft int
	IsPast   bool
	IsValid  bool
}

// DaysUntil returns the number of days from now until the date in dateText,
// rounded up to a whole day. A departure later on the same calendar day
// therefore still yields 1, not 0.
//
// dateText is either a calendar date ("2006-01-02", read as UTC midnight) or
// an RFC 3339 timestamp. The result is invalid when dateText cannot be parsed
// or when the target is exactly now.
func DaysUntil(dateText string, now time.Time) Countdown {
	target, ok := ParseDeparture(dateText)
	if !ok {
		return Countdown{}
	}

	diff := target.Sub(now).Milliseconds()
	days := int(math.Ceil(float64(diff) / msPerDay))

	return Countdown{
		DaysLeft: days,
		IsPast:   days < 0,
		IsValid:  diff != 0,
	}
}

// ParseDeparture parses a departure date in either accepted layout.
func ParseDeparture(dateText string) (time.Time, bool) {
	s := strings.TrimSpace(dateText)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// NormalizeDepartureDate returns the calendar date of dateText in DateLayout,
// which is the key used for duplicate detection. Timestamps keep the calendar
// date of their own offset.
func NormalizeDepartureDate(dateText string) (string, bool) {
	t, ok := ParseDeparture(dateText)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}
