// Package metrics holds the HTTP-level Prometheus collectors. Domain
// collectors live with their modules.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP transport collectors.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
}

// New creates and registers the HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portflow_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portflow_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}, []string{"method", "route"}),
	}
}

// Latency is the middleware recording per-request metrics.
func (m *Metrics) Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.RequestDurationMs.WithLabelValues(r.Method, route).
			Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
