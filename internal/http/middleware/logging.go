// Package middleware holds HTTP middleware shared across routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"pod-catalog/internal/logger"
)

type options struct {
	skips map[string]struct{}
}

// Option configures the request logger.
type Option func(*options)

// WithSkips suppresses logging for the given exact paths. Used to keep
// health probes out of the log stream.
func WithSkips(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			o.skips[p] = struct{}{}
		}
	}
}

// statusRecorder captures the response status for the access log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogRequests tags every request with an X-Request-ID and writes one
// access log line per request.
func LogRequests(opts ...Option) mux.MiddlewareFunc {
	o := &options{skips: map[string]struct{}{}}
	for _, fn := range opts {
		fn(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", reqID)

			if _, skip := o.skips[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			logger.Infof("%s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), reqID)
		})
	}
}
