package report

import "github.com/NordCoder/Fisherman/internal/domain/provider"

// ComponentReport reduces several samples of one provider.
type ComponentReport struct {
	RequestNumber  uint64  `json:"request_number"`
	SuccessNumber  uint64  `json:"success_number"`
	ResponseTimeMs *uint32 `json:"response_time_ms,omitempty"`
}

func (c ComponentReport) SuccessPercent() uint32 {
	if c.RequestNumber == 0 {
		return 0
	}
	return uint32(c.SuccessNumber * 100 / c.RequestNumber)
}

// HealthThresholds are kept per component type. DApi has none, so a DApi
// report only passes with a perfect zero-latency sample.
type HealthThresholds struct {
	NodeSuccessPercent    uint32
	GatewaySuccessPercent uint32
	NodeResponseTimeMs    uint32
	GatewayResponseTimeMs uint32
}

func (t HealthThresholds) limits(ct provider.ComponentType) (successPercent, responseTimeMs uint32) {
	switch ct {
	case provider.Node:
		return t.NodeSuccessPercent, t.NodeResponseTimeMs
	case provider.Gateway:
		return t.GatewaySuccessPercent, t.GatewayResponseTimeMs
	default:
		return 100, 0
	}
}

// Healthy needs at least one success and a measured latency; a report with
// neither is unhealthy, never indeterminate.
func (t HealthThresholds) Healthy(ct provider.ComponentType, c ComponentReport) bool {
	if c.SuccessNumber == 0 || c.ResponseTimeMs == nil {
		return false
	}
	minSuccess, maxLatency := t.limits(ct)
	return c.SuccessPercent() >= minSuccess && *c.ResponseTimeMs <= maxLatency
}

func Ms(v uint32) *uint32 { return &v }
