package middleware

import (
	"log"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Trace logs one line per request: method, path, response status, and
// latency, keyed by the correlation id.
func Trace(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)
			if logger != nil {
				logger.Printf(
					"%s %s status=%d elapsed_ms=%d request_id=%s",
					r.Method,
					r.URL.Path,
					recorder.status,
					time.Since(start).Milliseconds(),
					GetRequestID(r.Context()),
				)
			}
		})
	}
}
