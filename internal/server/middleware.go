package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vietddude/pulse/internal/metrics"
	"github.com/vietddude/pulse/internal/sla"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records the outcome and duration of every completed request
// into the SLA engine. The routing layer wraps its handler chain with this;
// handlers that never call WriteHeader are recorded as 200.
func Middleware(engine *sla.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			success := rec.status < 400
			engine.Record(r.URL.Path, duration, rec.status, success)

			key := sla.NormalizeEndpoint(r.URL.Path)
			metrics.RequestsTotal.WithLabelValues(key, strconv.Itoa(rec.status)).Inc()
			metrics.RequestDuration.WithLabelValues(key).Observe(duration.Seconds())
		})
	}
}
