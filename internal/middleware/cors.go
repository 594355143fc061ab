// Package middleware provides reusable HTTP middleware for the tags API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash).
// extraHeaders are allowed in addition to Content-Type and Authorization; pass
// the principal header here so browsers may send it.
func NewCORSHandler(allowedOrigins []string, extraHeaders ...string) func(http.Handler) http.Handler {
	headers := append([]string{"Content-Type", "Authorization"}, extraHeaders...)
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
