package penalty

import (
	"fmt"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
)

type ReasonKind string

const (
	BadPerformance ReasonKind = "bad_performance"
	OutOfSync      ReasonKind = "out_of_sync"
)

// Reason explains a penalty. Requests, SuccessPercent and AvgLatencyMs are
// only meaningful for BadPerformance.
type Reason struct {
	Kind           ReasonKind `json:"kind"`
	Requests       uint64     `json:"requests,omitempty"`
	SuccessPercent uint32     `json:"success_percent,omitempty"`
	AvgLatencyMs   uint32     `json:"avg_latency_ms,omitempty"`
}

func NewBadPerformance(requests uint64, successPercent, avgLatencyMs uint32) Reason {
	return Reason{Kind: BadPerformance, Requests: requests, SuccessPercent: successPercent, AvgLatencyMs: avgLatencyMs}
}

func (r Reason) String() string {
	if r.Kind == BadPerformance {
		return fmt.Sprintf("BadPerformance(%d, %d, %d)", r.Requests, r.SuccessPercent, r.AvgLatencyMs)
	}
	return "OutOfSync"
}

// Report is one stored penalty submission.
type Report struct {
	ID            int64                  `json:"id"`
	ProviderID    string                 `json:"provider_id"`
	ComponentType provider.ComponentType `json:"component_type"`
	Blockchain    string                 `json:"blockchain"`
	Network       string                 `json:"network"`
	Reason        Reason                 `json:"reason"`
	CreatedAt     time.Time              `json:"created_at"`
}
