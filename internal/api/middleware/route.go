package middleware

import (
	"context"
	"net/http"
)

type routeHolder struct {
	pattern string
}

type routeHolderKey struct{}

// TrackRoute gives inner handlers a place to record the matched mux pattern
// so outer middleware can read it after ServeHTTP returns, even when a
// request copy reached the mux.
func TrackRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(routeHolderKey{}).(*routeHolder); !ok {
			r = r.WithContext(context.WithValue(r.Context(), routeHolderKey{}, &routeHolder{}))
		}
		next.ServeHTTP(w, r)
	})
}

// RecordRoute stores r.Pattern for TrackRoute. Wrap each registered handler.
func RecordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if holder, ok := r.Context().Value(routeHolderKey{}).(*routeHolder); ok {
			holder.pattern = r.Pattern
		}
		next.ServeHTTP(w, r)
	})
}

// RoutePattern returns the matched mux pattern, or "" when no route matched.
func RoutePattern(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	if holder, ok := r.Context().Value(routeHolderKey{}).(*routeHolder); ok {
		return holder.pattern
	}
	return ""
}
