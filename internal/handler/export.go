package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// csvHeaders is the first row of every CSV export.
var csvHeaders = []string{
	"id", "city", "country", "departure_date", "days_left",
	"temp", "description", "feels_like", "precip", "image", "created_at",
}

// ExportTrips handles GET /api/trips/export.
// ?format=csv returns a CSV attachment; anything else returns the JSON list.
func (s *Server) ExportTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "csv" {
		out := make([]tripResponse, len(trips))
		for i, t := range trips {
			out[i] = tripToResponse(t)
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	//nolint:errcheck // bytes.Buffer writes do not fail
	cw.Write(csvHeaders)
	for _, t := range trips {
		//nolint:errcheck
		cw.Write(tripToCSVRecord(t))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func tripToCSVRecord(t domain.TripRecord) []string {
	return []string{
		t.ID.String(),
		t.City,
		t.Country,
		t.DepartureDate,
		strconv.Itoa(t.DaysLeft),
		formatFloat(t.Weather.Temp),
		t.Weather.Description,
		formatFloat(t.Weather.FeelsLike),
		formatFloat(t.Weather.Precip),
		t.Image,
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
