package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// deadlineWriter guards the underlying ResponseWriter once the request
// deadline fires: the handler goroutine may still be running, and exactly one
// side gets to write the response.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	expired bool
	wrote   bool
	status  int
}

func (dw *deadlineWriter) WriteHeader(status int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.wrote {
		return
	}

	dw.status = status
	dw.wrote = true
	dw.ResponseWriter.WriteHeader(status)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}

	if !dw.wrote {
		dw.status = http.StatusOK
		dw.wrote = true
	}

	return dw.ResponseWriter.Write(b)
}

func (dw *deadlineWriter) expire() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
}

// RequestTimeout bounds each request with a context deadline. When the
// deadline fires before the handler finishes, the client gets a 503 and any
// late writes from the handler are discarded.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(dw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				dw.expire()
				dw.mu.Lock()
				if !dw.wrote {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte(`{"error":"Request timeout"}`))
					dw.wrote = true
				}
				dw.mu.Unlock()
			}
		})
	}
}
