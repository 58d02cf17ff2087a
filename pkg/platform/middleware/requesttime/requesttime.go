// Package requesttime pins one "now" per request so the saga's timestamps
// (orphan ledger entries, logs) agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"idgate/pkg/requestcontext"
)

// Middleware captures the current time once, before any handler runs.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithClock(time.Now)(next)
}

// MiddlewareWithClock is Middleware with an injectable clock.
func MiddlewareWithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
