// Package metrics exposes prometheus counters for the ledger and its HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TransactionsApplied  *prometheus.CounterVec
	TransactionsRejected *prometheus.CounterVec
	UnitsMoved           *prometheus.CounterVec
	ImportRows           *prometheus.CounterVec
	AnalysisCalls        *prometheus.CounterVec
}

// New creates and registers all collectors under namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
	m.TransactionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_applied_total",
			Help:      "Transactions applied to the ledger",
		},
		[]string{"sale_type"},
	)
	m.TransactionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_rejected_total",
			Help:      "Transactions rejected before any mutation",
		},
		[]string{"reason"},
	)
	m.UnitsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_moved_total",
			Help:      "Units deducted from source warehouses by applied transactions",
		},
		[]string{"sale_type"},
	)
	m.ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Batch import rows by outcome",
		},
		[]string{"outcome"},
	)
	m.AnalysisCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_calls_total",
			Help:      "External analysis calls by outcome",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransactionsApplied,
		m.TransactionsRejected,
		m.UnitsMoved,
		m.ImportRows,
		m.AnalysisCalls,
	)
	return m
}

// Handler returns the promhttp handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordTransactionApplied(saleType string, units int) {
	if m == nil {
		return
	}
	m.TransactionsApplied.WithLabelValues(saleType).Inc()
	m.UnitsMoved.WithLabelValues(saleType).Add(float64(units))
}

func (m *Metrics) RecordTransactionRejected(reason string) {
	if m == nil {
		return
	}
	m.TransactionsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordImport(updated, skipped int) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues("updated").Add(float64(updated))
	m.ImportRows.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) RecordAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.AnalysisCalls.WithLabelValues(outcome).Inc()
}
