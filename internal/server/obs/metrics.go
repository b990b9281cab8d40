// Package obs holds the prometheus collectors of the server.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flow names for AuthOutcome.
const (
	FlowRegister = "register"
	FlowLogin    = "login"
	FlowRefresh  = "refresh"
)

// Outcome labels for AuthOutcome.
const (
	OutcomeSuccess      = "success"
	OutcomeConflict     = "conflict"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Metrics bundles the collectors registered on one registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	authOutcomes        *prometheus.CounterVec
	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	sweptTokens         prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a fresh registry
// together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_flow_outcomes_total",
			Help: "Authentication flow results by flow and outcome.",
		}, []string{"flow", "outcome"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		sweptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refresh_tokens_swept_total",
			Help: "Expired refresh tokens removed by the sweeper.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authOutcomes,
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.sweptTokens,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) AuthOutcome(flow, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(flow, outcome).Inc()
}

// RequestStarted marks a request in flight and returns the function that
// records its completion.
func (m *Metrics) RequestStarted() func(method, path string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	m.httpInFlight.Inc()
	start := time.Now()
	return func(method, path string, status int) {
		code := strconv.Itoa(status)
		m.httpRequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
		m.httpInFlight.Dec()
	}
}

func (m *Metrics) TokensSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptTokens.Add(float64(n))
}
