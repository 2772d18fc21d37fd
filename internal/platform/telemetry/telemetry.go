// Package telemetry exposes Prometheus metrics for the scheduling gateway:
// HTTP request counts and latency, mutation outcomes by conflict kind, and
// pattern expansion batch results.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the gateway's collectors behind a single registry so tests
// can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	mutationsTotal  *prometheus.CounterVec
	expansionVisits *prometheus.CounterVec
	upstreamErrors  prometheus.Counter
}

// New builds a Metrics with its own registry and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houkan",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled by the gateway.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "houkan",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houkan",
			Name:      "visit_mutations_total",
			Help:      "Visit mutations by operation and outcome kind.",
		}, []string{"operation", "outcome"}),
		expansionVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houkan",
			Name:      "pattern_expansion_visits_total",
			Help:      "Visits produced or skipped by pattern expansion.",
		}, []string{"result"}),
		upstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "houkan",
			Name:      "upstream_errors_total",
			Help:      "Transport-level failures talking to the care record service.",
		}),
	}
	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.mutationsTotal,
		m.expansionVisits,
		m.upstreamErrors,
	)
	return m
}

// ObserveMutation records the outcome of a visit mutation. The outcome label
// is "ok" for success or the conflict kind string for failures.
func (m *Metrics) ObserveMutation(operation, outcome string) {
	m.mutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveExpansion records a pattern expansion batch. Each counter tracks how
// many candidate dates ended up in that bucket.
func (m *Metrics) ObserveExpansion(created, skipped, failed int) {
	m.expansionVisits.WithLabelValues("created").Add(float64(created))
	m.expansionVisits.WithLabelValues("skipped").Add(float64(skipped))
	m.expansionVisits.WithLabelValues("failed").Add(float64(failed))
}

// ObserveUpstreamError counts a transport failure against the collaborator.
func (m *Metrics) ObserveUpstreamError() {
	m.upstreamErrors.Inc()
}

// Middleware instruments every request with count and latency metrics. The
// route template is used as the path label so IDs do not explode cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			m.requestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler returns the exposition endpoint for this registry.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
