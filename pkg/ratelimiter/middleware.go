package ratelimiter

import (
	"math"
	"net/http"
	"strconv"
)

// KeyFunc extracts a rate limit key from the request.
type KeyFunc func(r *http.Request) string

// DeniedHandler writes the response for a rejected request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, res Result)

// Middleware limits requests per key and sets X-RateLimit-* headers.
// A nil onDenied answers with a plain 429.
func Middleware(l *Limiter, keyFunc KeyFunc, onDenied DeniedHandler) func(http.Handler) http.Handler {
	if l == nil || keyFunc == nil {
		panic("ratelimiter: limiter and key func are required")
	}
	if onDenied == nil {
		onDenied = func(w http.ResponseWriter, _ *http.Request, _ Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Allow(keyFunc(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed() {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				onDenied(w, r, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
