package middleware

import "net/http"

// MaxRequestBody caps the request body size; oversized reads fail inside the
// handler's decoder with a *http.MaxBytesError.
func MaxRequestBody(maxBytes int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))
			next.ServeHTTP(w, r)
		})
	}
}
