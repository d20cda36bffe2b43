// Package middleware provides the HTTP middleware wrapped around the trip
// planner router.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler lets the trip planner web client, served from another
// origin, call the proxy and trip endpoints. allowedOrigins comes from
// CORS_ORIGINS; entries are scheme + host with no trailing slash.
// Only JSON bodies are sent, so Content-Type is the one allowed header, and
// preflight results are cached for five minutes.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
