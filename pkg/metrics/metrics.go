// Package metrics provides Prometheus metrics for the honor-board service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Business metrics
	boardBuilds        prometheus.Counter
	mutations          *prometheus.CounterVec
	validationFailures *prometheus.CounterVec

	// Write-behind persistence metrics
	persistenceErrors  prometheus.Counter
	persistQueueSize   prometheus.Gauge
	persistQueueDrops  prometheus.Counter
	persistWorkerCount prometheus.Gauge

	// Entity gauges
	observersTotal   prometheus.Gauge
	pendingApprovals prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the latency histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets the Prometheus registry collectors are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "honorboard",
		subsystem: "core",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.boardBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "board_builds_total",
		Help:      "Total number of honor board computations",
	})
	m.mutations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_total",
		Help:      "Total number of store mutations by entity and operation",
	}, []string{"entity", "op"})
	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of rejected mutations by failure kind",
	}, []string{"kind"})
	m.persistenceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_errors_total",
		Help:      "Total number of swallowed durable-write failures",
	})
	m.persistQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_size",
		Help:      "Current size of the write-behind persistence queue",
	})
	m.persistQueueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_drops_total",
		Help:      "Total number of persistence jobs dropped on backpressure",
	})
	m.persistWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_worker_count",
		Help:      "Number of persistence workers",
	})
	m.observersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observers_total",
		Help:      "Total number of tracked observers",
	})
	m.pendingApprovals = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_approvals",
		Help:      "Number of weekly statistics awaiting supervisor review",
	})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method", "status_code"})

	return m
}

// Global manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Handler returns the HTTP handler serving the global registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// RecordBoardBuild increments the honor board computation counter.
func RecordBoardBuild() {
	globalManager.boardBuilds.Inc()
}

// RecordMutation counts a successful store mutation.
func RecordMutation(entity, op string) {
	globalManager.mutations.WithLabelValues(entity, op).Inc()
}

// RecordValidationFailure counts a rejected mutation by failure kind.
func RecordValidationFailure(kind string) {
	globalManager.validationFailures.WithLabelValues(kind).Inc()
}

// RecordPersistenceError counts a swallowed durable-write failure.
func RecordPersistenceError() {
	globalManager.persistenceErrors.Inc()
}

// UpdatePersistQueueSize sets the current persistence queue size.
func UpdatePersistQueueSize(size int) {
	globalManager.persistQueueSize.Set(float64(size))
}

// RecordPersistQueueDrop counts a persistence job dropped on backpressure.
func RecordPersistQueueDrop() {
	globalManager.persistQueueDrops.Inc()
}

// UpdatePersistWorkerCount sets the number of persistence workers.
func UpdatePersistWorkerCount(count int) {
	globalManager.persistWorkerCount.Set(float64(count))
}

// UpdateObserversTotal sets the tracked observer count.
func UpdateObserversTotal(count int) {
	globalManager.observersTotal.Set(float64(count))
}

// UpdatePendingApprovals sets the pending approvals gauge.
func UpdatePendingApprovals(count int) {
	globalManager.pendingApprovals.Set(float64(count))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in
// milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
