package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.MessageCounter.WithLabelValues("template", "en").Inc()
	m.ToolExecutionCounter.WithLabelValues("list_templates", "success").Inc()
	m.ClassifierOutcomes.WithLabelValues("heuristic").Add(2)
	m.ActiveSessions.Set(3)

	if got := testutil.ToFloat64(m.MessageCounter.WithLabelValues("template", "en")); got != 1 {
		t.Errorf("message counter = %v", got)
	}
	if got := testutil.ToFloat64(m.ClassifierOutcomes.WithLabelValues("heuristic")); got != 2 {
		t.Errorf("heuristic counter = %v", got)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 3 {
		t.Errorf("active sessions = %v", got)
	}
}

func TestNewMetricsSeparateRegistries(t *testing.T) {
	// Two instances must not collide when registered on distinct registries.
	a := NewMetrics(prometheus.NewRegistry())
	b := NewMetrics(prometheus.NewRegistry())
	a.FormatterRetries.Inc()
	if got := testutil.ToFloat64(b.FormatterRetries); got != 0 {
		t.Errorf("registries shared state: %v", got)
	}
}
