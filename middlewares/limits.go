package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// DefaultBodyLimit is the default maximum request body size (1 MB).
const DefaultBodyLimit = 1 << 20

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// BodyLimit caps request bodies at n bytes, or DefaultBodyLimit when n <= 0. Reads past the limit fail, and
// decoders surface the error as a bad request.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	if n <= 0 {
		n = DefaultBodyLimit
	}
	return middleware.RequestSize(n)
}

// Timeout sets a deadline on the request context. Handlers that honour
// ctx.Done stop early; the middleware never writes a response itself.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
