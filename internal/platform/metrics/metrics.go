// Package metrics holds the Prometheus collectors of the ticketing API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feria_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "feria_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// Validations counts gate validations by credential kind, action and result.
var Validations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feria_validations_total",
	Help: "Credential validations by kind, action and result.",
}, []string{"kind", "action", "result"})

var CredentialsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feria_credentials_issued_total",
	Help: "Credentials issued by kind.",
}, []string{"kind"})

// AttendeesInside is refreshed periodically from stored entry states.
var AttendeesInside = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "feria_attendees_inside",
	Help: "Credentials currently inside, per event.",
}, []string{"event_id"})

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency. pathOf must return a
// templated route, never the raw URL, to keep label cardinality bounded.
func Middleware(pathOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(rw, r)
			path := pathOf(r)
			HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(rw.Status)).Inc()
			HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// StatusRecorder captures the status code written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.Status = code
	rw.ResponseWriter.WriteHeader(code)
}
