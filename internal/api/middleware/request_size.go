package middleware

import (
	"net/http"
)

// DefaultMaxBodySize caps API request bodies. Admin and event payloads are a
// handful of short strings.
const DefaultMaxBodySize int64 = 64 << 10 // 64KB

// RequestSize limits the size of incoming request bodies.
//
// It wraps the request body with http.MaxBytesReader; decoders then see a
// *http.MaxBytesError and the handlers answer 413.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
