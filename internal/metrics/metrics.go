package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmatrix_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentmatrix_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method"},
	)

	// Registry metrics
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmatrix_queries_total",
			Help: "Total registry view queries",
		},
		[]string{"source"}, // "http", "mcp" or "cli"
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmatrix_registrations_total",
			Help: "Registration attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	GovernanceDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmatrix_governance_decisions_total",
			Help: "Approve and reject decisions",
		},
		[]string{"decision"},
	)

	Imports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmatrix_imports_total",
			Help: "Registry imports by outcome",
		},
		[]string{"outcome"},
	)

	Items = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentmatrix_items",
			Help: "Registered items by kind",
		},
		[]string{"kind"},
	)

	// Infrastructure metrics
	PersistLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agentmatrix_persist_latency_seconds",
			Help:    "Time to write the registry to its backend",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentmatrix_persist_failures_total",
			Help: "Failed registry writes",
		},
	)
)
