package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"google.golang.org/protobuf/types/known/structpb"
)

type PenaltyEventsKafka struct {
	p *Producer
}

func NewPenaltyEventsKafka(p *Producer) *PenaltyEventsKafka { return &PenaltyEventsKafka{p: p} }

var _ penalty.Events = (*PenaltyEventsKafka)(nil)

// PublishReport keys by provider id so reports of one provider stay ordered.
func (e *PenaltyEventsKafka) PublishReport(ctx context.Context, r *penalty.Report) error {
	msg, err := ReportStruct(r)
	if err != nil {
		return err
	}
	return e.p.PublishProto(ctx, []byte(r.ProviderID), msg)
}

// ReportStruct is the wire form of a penalty report.
func ReportStruct(r *penalty.Report) (*structpb.Struct, error) {
	reason := map[string]any{"kind": string(r.Reason.Kind)}
	if r.Reason.Kind == penalty.BadPerformance {
		reason["requests"] = r.Reason.Requests
		reason["success_percent"] = r.Reason.SuccessPercent
		reason["avg_latency_ms"] = r.Reason.AvgLatencyMs
	}
	s, err := structpb.NewStruct(map[string]any{
		"id":             r.ID,
		"provider_id":    r.ProviderID,
		"component_type": r.ComponentType.String(),
		"blockchain":     r.Blockchain,
		"network":        r.Network,
		"reason":         reason,
		"created_at":     r.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("encode report %d: %w", r.ID, err)
	}
	return s, nil
}
