// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records auth flow outcomes and HTTP traffic.
type Collector struct {
	authEvents   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerly_auth_events_total",
			Help: "Auth flow results by flow and outcome.",
		}, []string{"flow", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerly_http_requests_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerly_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.authEvents, c.httpRequests, c.httpDuration)
	return c
}

// AuthEvent counts one auth flow result. outcome is success, failure or error.
func (c *Collector) AuthEvent(flow, outcome string) {
	c.authEvents.WithLabelValues(flow, outcome).Inc()
}

// Middleware records status and latency of every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		c.httpDuration.Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
