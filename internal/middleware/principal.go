package middleware

import (
	"net/http"
	"strings"

	"github.com/pkordes/tagstore/internal/domain"
)

// NewPrincipalHandler returns a middleware that reads the acting principal
// from header and stores it in the request context for provenance.
// The header is trusted as-is; authentication happens upstream. Requests
// without it act as fallback.
func NewPrincipalHandler(header, fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get(header))
			if name == "" {
				name = fallback
			}
			next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), name)))
		})
	}
}
