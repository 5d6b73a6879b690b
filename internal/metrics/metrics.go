// SPDX-License-Identifier: MIT
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apimgr/metaseek/internal/config"
)

// Manager wraps the Prometheus collectors the core and its
// collaborators report into, and the HTTP handler that exposes them.
type Manager struct {
	cfg      *config.MetricsConfig
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	searchesTotal   prometheus.Counter
	errorsTotal     *prometheus.CounterVec
	activeRequests  prometheus.Gauge
	searchDuration  prometheus.Histogram
	engineRequests  *prometheus.CounterVec
	engineErrors    *prometheus.CounterVec
	engineLatency   *prometheus.HistogramVec
}

// New registers the metaseek collectors against a fresh registry so
// repeated calls in tests don't collide with prometheus' default
// global registry.
func New(cfg config.MetricsConfig) *Manager {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Manager{
		cfg: &cfg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaseek_http_requests_total",
			Help: "Total HTTP requests handled, by route and status class.",
		}, []string{"route", "status"}),
		searchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "metaseek_searches_total",
			Help: "Total search requests dispatched to the executor.",
		}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaseek_errors_total",
			Help: "Total handler errors, by kind.",
		}, []string{"kind"}),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "metaseek_active_requests",
			Help: "In-flight HTTP requests.",
		}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "metaseek_search_duration_seconds",
			Help:    "Wall-clock time to complete a full search dispatch.",
			Buckets: prometheus.DefBuckets,
		}),
		engineRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaseek_engine_requests_total",
			Help: "Requests issued per engine.",
		}, []string{"engine"}),
		engineErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaseek_engine_errors_total",
			Help: "Classified errors per engine.",
		}, []string{"engine", "kind"}),
		engineLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metaseek_engine_latency_seconds",
			Help:    "Per-engine response latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
	}

	if cfg.IncludeSystem {
		reg.MustRegister(prometheus.NewGoCollector())
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	m.registry = reg
	return m
}

// Handler serves the registry in Prometheus text exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one completed HTTP request.
func (m *Manager) RecordRequest(route, statusClass string) {
	m.requestsTotal.WithLabelValues(route, statusClass).Inc()
}

// RecordSearch records one completed search dispatch and its duration.
func (m *Manager) RecordSearch(duration time.Duration) {
	m.searchesTotal.Inc()
	m.searchDuration.Observe(duration.Seconds())
}

// RecordError records one handler-level error by kind.
func (m *Manager) RecordError(kind string) {
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// StartRequest/EndRequest track in-flight HTTP requests.
func (m *Manager) StartRequest() { m.activeRequests.Inc() }
func (m *Manager) EndRequest()   { m.activeRequests.Dec() }

// RecordEngineRequest records one outbound call to engine.
func (m *Manager) RecordEngineRequest(engine string, latency time.Duration) {
	m.engineRequests.WithLabelValues(engine).Inc()
	m.engineLatency.WithLabelValues(engine).Observe(latency.Seconds())
}

// RecordEngineError records one classified error for engine.
func (m *Manager) RecordEngineError(engine, kind string) {
	m.engineErrors.WithLabelValues(engine, kind).Inc()
}
