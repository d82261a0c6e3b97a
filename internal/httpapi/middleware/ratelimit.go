package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"propintel/internal/httpapi/respond"
)

// RateLimit ограничивает общую частоту запросов token bucket'ом.
func RateLimit(rps float64, burst int, log *slog.Logger) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				respond.Error(w, log, http.StatusTooManyRequests, respond.CodeRateLimited, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
