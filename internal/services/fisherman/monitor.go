package fisherman

import (
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
)

// FailureThresholds is the minimum run of unhealthy cycles before a report.
type FailureThresholds struct {
	Node    int
	Gateway int
}

func (f FailureThresholds) limit(ct provider.ComponentType) (int, bool) {
	switch ct {
	case provider.Node:
		return max(f.Node, 1), true
	case provider.Gateway:
		return max(f.Gateway, 1), true
	default:
		return 0, false
	}
}

// Monitor decides from the history ring whether a provider has been unhealthy
// long enough to be reported.
type Monitor struct {
	history  *History
	health   report.HealthThresholds
	failures FailureThresholds
}

func NewMonitor(history *History, health report.HealthThresholds, failures FailureThresholds) *Monitor {
	return &Monitor{history: history, health: health, failures: failures}
}

func (m *Monitor) Record(c Cycle) { m.history.Push(c) }

func (m *Monitor) Healthy(e Entry) bool {
	return m.health.Healthy(e.Provider.ComponentType, e.Report)
}

func (m *Monitor) ConsecutiveFailures(p provider.Provider) int {
	return m.history.ConsecutiveFailures(p.ID, m.Healthy)
}

// ShouldReport never triggers for dAPIs.
func (m *Monitor) ShouldReport(p provider.Provider) bool {
	limit, ok := m.failures.limit(p.ComponentType)
	if !ok {
		return false
	}
	return m.ConsecutiveFailures(p) >= limit
}
