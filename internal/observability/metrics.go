package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bmkg_mcp"

// Metrics holds the Prometheus counters, histograms, and gauges for the tool server.
type Metrics struct {
	// Tool invocation metrics.
	ToolCalls    *prometheus.CounterVec   // labels: tool, outcome={success,not_found,error}
	ToolDuration *prometheus.HistogramVec // labels: tool

	// Upstream BMKG metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Gazetteer and audit state.
	GazetteerRows prometheus.Gauge
	AuditEnabled  prometheus.Gauge
	AuditErrors   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ToolCalls,
		m.ToolDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.GazetteerRows,
		m.AuditEnabled,
		m.AuditErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of a tool invocation, including upstream requests.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tool"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "BMKG requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "BMKG request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		GazetteerRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gazetteer_rows",
			Help:      "Rows in the loaded region table, 0 until loaded.",
		}),
		AuditEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_enabled",
			Help:      "1 when tool call events are published to Kafka, 0 otherwise.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_publish_errors_total",
			Help:      "Tool call events that could not be handed to the Kafka writer.",
		}),
	}
}
