// Package metrics exposes Prometheus collectors for the inventory service.
// All collectors live in a private registry so the /metrics endpoint carries
// only what this service registers.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/libreshelf/librarian/pkg/models"
)

// Metrics holds the service's metric collectors. A nil *Metrics is a valid
// no-op recorder, so wiring stays optional in tests and one-shot CLI runs.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	circulationTotal *prometheus.CounterVec

	loadRunsTotal *prometheus.CounterVec
	loadRowsTotal *prometheus.CounterVec
}

// Circulation outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// NewMetrics creates the collectors and registers them in a fresh registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "librarian_http_request_duration_seconds",
				Help:    "Time taken for HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		circulationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_circulation_requests_total",
				Help: "Circulation requests by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		loadRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_load_runs_total",
				Help: "Bulk load runs by final status",
			},
			[]string{"status"},
		),
		loadRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_load_rows_total",
				Help: "Bulk load rows by result",
			},
			[]string{"result"},
		),
	}

	collectors := []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.circulationTotal,
		m.loadRunsTotal,
		m.loadRowsTotal,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return m, nil
}

// RegisterHandlers mounts the /metrics endpoint on the mux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	if m == nil {
		return
	}
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
}

// RecordHTTPRequest counts one served request and observes its duration.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCirculation counts one borrow or return attempt.
func (m *Metrics) RecordCirculation(action, outcome string) {
	if m == nil {
		return
	}
	m.circulationTotal.WithLabelValues(action, outcome).Inc()
}

// RecordLoadRun counts one finished run and its per-row results.
func (m *Metrics) RecordLoadRun(status string, report *models.LoadReport) {
	if m == nil {
		return
	}
	m.loadRunsTotal.WithLabelValues(status).Inc()
	if report == nil {
		return
	}
	m.loadRowsTotal.WithLabelValues("inserted").Add(float64(report.Inserted))
	m.loadRowsTotal.WithLabelValues("updated").Add(float64(report.Updated))
	m.loadRowsTotal.WithLabelValues("skipped").Add(float64(report.Skipped))
}
