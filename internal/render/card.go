// Package render turns trip records into display text. It is the only place
// that decides how a trip looks; the planner returns data and never formats.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Card is the display view of one TripRecord, one field per slot of the
// trip card.
type Card struct {
	Destination string
	Countdown   string
	Image       string
	Temperature string
	Conditions  string
	FeelsLike   string
	Precip      string
}

// NewCard builds the display view of trip.
func NewCard(trip domain.TripRecord) Card {
	image := trip.Image
	if image == "" {
		image = domain.PlaceholderImageURL
	}
	return Card{
		Destination: Destination(trip),
		Countdown:   Countdown(trip.DaysLeft),
		Image:       image,
		Temperature: celsius(trip.Weather.Temp),
		Conditions:  trip.Weather.Description,
		FeelsLike:   celsius(trip.Weather.FeelsLike),
		Precip:      strconv.FormatFloat(trip.Weather.Precip, 'f', -1, 64) + " mm",
	}
}

// Destination is "City, Country", or whichever half is known.
func Destination(trip domain.TripRecord) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{trip.City, trip.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Countdown is "N Days Left", or "Trip Date Passed!" for negative counts.
func Countdown(daysLeft int) string {
	if daysLeft < 0 {
		return "Trip Date Passed!"
	}
	return fmt.Sprintf("%d Days Left", daysLeft)
}

func celsius(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "°C"
}

var cardTmpl = template.Must(template.New("card").Parse(`{{.Destination}}
  {{.Countdown}}
  Weather:    {{.Temperature}}, {{.Conditions}}
  Feels like: {{.FeelsLike}}
  Precip:     {{.Precip}}
  Photo:      {{.Image}}
`))

// WriteCard writes the full card for trip to w.
func WriteCard(w io.Writer, trip domain.TripRecord) error {
	if err := cardTmpl.Execute(w, NewCard(trip)); err != nil {
		return fmt.Errorf("render.WriteCard: %w", err)
	}
	return nil
}

// WriteSaved writes the saved-trips list, one indexed line per trip. The
// index is the one RemoveAt expects.
func WriteSaved(w io.Writer, trips []domain.TripRecord) error {
	if len(trips) == 0 {
		_, err := io.WriteString(w, "No saved trips.\n")
		return err
	}
	for i, t := range trips {
		if _, err := fmt.Fprintf(w, "[%d] %s (%s): %s\n", i, Destination(t), t.DepartureDate, Countdown(t.DaysLeft)); err != nil {
			return fmt.Errorf("render.WriteSaved: %w", err)
		}
	}
	return nil
}
