package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

func statusHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// serveLogged runs one request through NewSlogLogger and returns the decoded
// log line, or nil when nothing was logged at the given minimum level.
func serveLogged(t *testing.T, level slog.Level, h http.Handler, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))

	rec := httptest.NewRecorder()
	middleware.NewSlogLogger(logger)(h).ServeHTTP(rec, req)

	if buf.Len() == 0 {
		return nil
	}
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

// TestSlogLogger_logsRequestFields verifies that the SlogLogger middleware
// writes a structured JSON log line containing method, path, status, duration,
// and the request ID placed in context by chi's RequestID middleware.
func TestSlogLogger_logsRequestFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)

	// Simulate what chimiddleware.RequestID does: inject a known ID into context.
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id")
	req = req.WithContext(ctx)

	entry := serveLogged(t, slog.LevelInfo, statusHandler(http.StatusOK, "[]"), req)

	require.NotNil(t, entry)
	require.Equal(t, "INFO", entry["level"])
	require.Equal(t, "GET", entry["method"])
	require.Equal(t, "/api/trips", entry["path"])
	require.EqualValues(t, http.StatusOK, entry["status"])
	require.EqualValues(t, 2, entry["bytes"])
	require.Equal(t, "test-req-id", entry["request_id"])
	require.NotNil(t, entry["duration_ms"])
}

func TestSlogLogger_levelFollowsStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusCreated, "INFO"},
		{http.StatusConflict, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/trips", nil)

			entry := serveLogged(t, slog.LevelInfo, statusHandler(tc.status, ""), req)

			require.NotNil(t, entry)
			require.Equal(t, tc.wantLevel, entry["level"])
			require.EqualValues(t, tc.status, entry["status"])
		})
	}
}

func TestSlogLogger_healthProbeLogsAtDebug(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	require.Nil(t, serveLogged(t, slog.LevelInfo, statusHandler(http.StatusOK, ""), req))

	entry := serveLogged(t, slog.LevelDebug, statusHandler(http.StatusOK, ""), req)
	require.NotNil(t, entry)
	require.Equal(t, "DEBUG", entry["level"])
}

func TestSlogLogger_implicitStatusIsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})

	entry := serveLogged(t, slog.LevelInfo, h, req)

	require.NotNil(t, entry)
	require.EqualValues(t, http.StatusOK, entry["status"])
}
