package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the orchestrator's Prometheus metrics.
//
// The classifier outcome counter is labeled by tier so heuristic
// (substring-based) failure detections can be audited separately from
// structured ones.
type Metrics struct {
	// MessageCounter tracks processed chat messages.
	// Labels: agent, language
	MessageCounter *prometheus.CounterVec

	// ToolExecutionCounter counts tool invocations.
	// Labels: tool, status (success|failure|malformed|timeout)
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	// Labels: tool
	ToolExecutionDuration *prometheus.HistogramVec

	// ClassifierOutcomes counts classifier decisions.
	// Labels: tier (structured|parsed|heuristic|malformed|success)
	ClassifierOutcomes *prometheus.CounterVec

	// FormatterRetries counts script-consistency re-requests.
	FormatterRetries prometheus.Counter

	// FormatterFallbacks counts degraded plain-text fallback responses.
	FormatterFallbacks prometheus.Counter

	// ActiveSessions tracks currently valid session tokens.
	ActiveSessions prometheus.Gauge

	// ErrorCounter tracks errors by component and type.
	// Labels: component (orchestrator|gateway|tools|formatter|session), error_type
	ErrorCounter *prometheus.CounterVec
}

// NewMetrics registers and returns the metric set on the given registerer.
// Pass nil to use the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessageCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_messages_total",
			Help: "Chat messages processed, by handling agent and language.",
		}, []string{"agent", "language"}),

		ToolExecutionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_tool_executions_total",
			Help: "Tool invocations by tool name and outcome status.",
		}, []string{"tool", "status"}),

		ToolExecutionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_tool_execution_seconds",
			Help:    "Tool execution latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"tool"}),

		ClassifierOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_classifier_outcomes_total",
			Help: "Tool result classifications by detection tier.",
		}, []string{"tier"}),

		FormatterRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_formatter_retries_total",
			Help: "Formatting re-requests triggered by mixed-script output.",
		}),

		FormatterFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_formatter_fallbacks_total",
			Help: "Responses degraded to the raw-field fallback renderer.",
		}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inkwell_active_sessions",
			Help: "Session tokens currently considered valid.",
		}),

		ErrorCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_errors_total",
			Help: "Errors by component and type.",
		}, []string{"component", "error_type"}),
	}
}
