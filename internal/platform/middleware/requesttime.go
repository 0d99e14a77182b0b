package middleware

import (
	"net/http"
	"time"

	"veristaff/pkg/requestcontext"
)

// RequestTime pins "now" once per request in the agency's operating time
// zone. Every status derivation and timestamp within the request observes
// the same instant, so a record cannot be expiring_soon in one part of a
// response and expired in another.
func RequestTime(loc *time.Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), time.Now().In(loc))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
