// Package observability carries the engine's metrics and tracing. Both
// are instance-based: a Metrics value owns its own Prometheus registry
// and a Tracer owns its provider, so tests never share collector state.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the engine's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// ToolExecutions counts tool invocations.
	// Labels: tool_name, status (success|error).
	ToolExecutions *prometheus.CounterVec

	// ToolDuration measures tool execution time in seconds.
	// Labels: tool_name.
	ToolDuration *prometheus.HistogramVec

	// ApprovalDecisions counts confirmation gate outcomes.
	// Labels: decision (approved|denied|timeout).
	ApprovalDecisions *prometheus.CounterVec

	// GuardRejections counts statements rejected by the read-only guard.
	GuardRejections prometheus.Counter

	// ProviderRequests counts model completions.
	// Labels: model, status (success|error).
	ProviderRequests *prometheus.CounterVec

	// ProviderDuration measures model completion latency in seconds.
	// Labels: model.
	ProviderDuration *prometheus.HistogramVec

	// LoopRounds measures how many provider rounds a run consumed.
	LoopRounds prometheus.Histogram

	// ActiveSessions tracks sessions currently running a loop.
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates all engine metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ToolExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mate_tool_executions_total",
			Help: "Total tool executions by tool name and status",
		}, []string{"tool_name", "status"}),

		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mate_tool_execution_duration_seconds",
			Help:    "Tool execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool_name"}),

		ApprovalDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mate_approval_decisions_total",
			Help: "Confirmation gate outcomes by decision",
		}, []string{"decision"}),

		GuardRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "mate_sql_guard_rejections_total",
			Help: "Statements rejected by the read-only SQL guard",
		}),

		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mate_provider_requests_total",
			Help: "Model completion requests by model and status",
		}, []string{"model", "status"}),

		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mate_provider_request_duration_seconds",
			Help:    "Model completion latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),

		LoopRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mate_loop_rounds",
			Help:    "Provider rounds consumed per run",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 15},
		}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mate_active_sessions",
			Help: "Sessions currently running an agent loop",
		}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordToolExecution records one tool invocation.
func (m *Metrics) RecordToolExecution(toolName, status string, seconds float64) {
	m.ToolExecutions.WithLabelValues(toolName, status).Inc()
	m.ToolDuration.WithLabelValues(toolName).Observe(seconds)
}

// RecordApproval records one gate outcome.
func (m *Metrics) RecordApproval(decision string) {
	m.ApprovalDecisions.WithLabelValues(decision).Inc()
}

// RecordProviderRequest records one model completion.
func (m *Metrics) RecordProviderRequest(model, status string, seconds float64) {
	m.ProviderRequests.WithLabelValues(model, status).Inc()
	m.ProviderDuration.WithLabelValues(model).Observe(seconds)
}
