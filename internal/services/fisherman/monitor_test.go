package fisherman

import (
	"testing"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/stretchr/testify/assert"
)

var (
	node    = provider.Provider{ID: "n1", ComponentType: provider.Node}
	gateway = provider.Provider{ID: "g1", ComponentType: provider.Gateway}
	dapi    = provider.Provider{ID: "d1", ComponentType: provider.DApi}

	thresholds = report.HealthThresholds{NodeSuccessPercent: 90, GatewaySuccessPercent: 90, NodeResponseTimeMs: 100, GatewayResponseTimeMs: 100}
)

func healthy(p provider.Provider) Entry {
	return Entry{Provider: p, Report: report.ComponentReport{RequestNumber: 10, SuccessNumber: 10, ResponseTimeMs: report.Ms(10)}}
}

func unhealthy(p provider.Provider) Entry {
	return Entry{Provider: p, Report: report.ComponentReport{RequestNumber: 10}}
}

func cycleOf(entries ...Entry) Cycle {
	c := Cycle{}
	for _, e := range entries {
		c[e.Provider.ID] = e
	}
	return c
}

func newMonitor(max int, f FailureThresholds) *Monitor {
	return NewMonitor(NewHistory(max), thresholds, f)
}

func TestShouldReport_ConsecutiveFailures(t *testing.T) {
	m := newMonitor(10, FailureThresholds{Node: 2, Gateway: 2})
	for range 3 {
		m.Record(cycleOf(unhealthy(node)))
	}
	assert.Equal(t, 3, m.ConsecutiveFailures(node))
	assert.True(t, m.ShouldReport(node))
}

func TestShouldReport_InterruptedByHealthy(t *testing.T) {
	m := newMonitor(10, FailureThresholds{Node: 2, Gateway: 2})
	m.Record(cycleOf(unhealthy(node)))
	m.Record(cycleOf(healthy(node)))
	m.Record(cycleOf(unhealthy(node)))

	assert.Equal(t, 1, m.ConsecutiveFailures(node))
	assert.False(t, m.ShouldReport(node))
}

func TestShouldReport_AbsentBreaksRun(t *testing.T) {
	m := newMonitor(10, FailureThresholds{Node: 2, Gateway: 2})
	m.Record(cycleOf(unhealthy(node)))
	m.Record(cycleOf(unhealthy(gateway)))
	m.Record(cycleOf(unhealthy(node), unhealthy(gateway)))

	assert.Equal(t, 1, m.ConsecutiveFailures(node))
	assert.Equal(t, 2, m.ConsecutiveFailures(gateway))
	assert.False(t, m.ShouldReport(node))
	assert.True(t, m.ShouldReport(gateway))
}

func TestShouldReport_IndependentThresholds(t *testing.T) {
	m := newMonitor(10, FailureThresholds{Node: 3, Gateway: 1})
	m.Record(cycleOf(unhealthy(node), unhealthy(gateway)))

	assert.False(t, m.ShouldReport(node))
	assert.True(t, m.ShouldReport(gateway))
}

func TestShouldReport_DApiNeverTriggers(t *testing.T) {
	m := newMonitor(10, FailureThresholds{Node: 1, Gateway: 1})
	for range 5 {
		m.Record(cycleOf(unhealthy(dapi)))
	}
	assert.Equal(t, 5, m.ConsecutiveFailures(dapi))
	assert.False(t, m.ShouldReport(dapi))
}

func TestShouldReport_ZeroThresholdMeansOne(t *testing.T) {
	m := newMonitor(10, FailureThresholds{})
	assert.False(t, m.ShouldReport(node))

	m.Record(cycleOf(unhealthy(node)))
	assert.True(t, m.ShouldReport(node))
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := range 4 {
		if i == 0 {
			h.Push(cycleOf(healthy(node)))
			continue
		}
		h.Push(cycleOf(unhealthy(node)))
	}

	assert.Equal(t, 3, h.Len())
	m := NewMonitor(h, thresholds, FailureThresholds{Node: 3})
	assert.Equal(t, 3, m.ConsecutiveFailures(node))
	assert.True(t, m.ShouldReport(node))
}

func TestHistory_WindowCapsCount(t *testing.T) {
	m := newMonitor(2, FailureThresholds{Node: 3})
	for range 5 {
		m.Record(cycleOf(unhealthy(node)))
	}
	assert.Equal(t, 2, m.ConsecutiveFailures(node))
	assert.False(t, m.ShouldReport(node))
}
