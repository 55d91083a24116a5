package kafka

import (
	"testing"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStruct(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, err := ReportStruct(&penalty.Report{
		ID:            7,
		ProviderID:    "node-1",
		ComponentType: provider.Gateway,
		Blockchain:    "eth",
		Network:       "mainnet",
		Reason:        penalty.NewBadPerformance(10, 40, 1200),
		CreatedAt:     at,
	})
	require.NoError(t, err)

	m := s.AsMap()
	assert.Equal(t, "node-1", m["provider_id"])
	assert.Equal(t, "gateway", m["component_type"])
	assert.Equal(t, "2024-05-01T12:00:00Z", m["created_at"])
	assert.Equal(t, float64(7), m["id"])

	reason := m["reason"].(map[string]any)
	assert.Equal(t, "bad_performance", reason["kind"])
	assert.Equal(t, float64(10), reason["requests"])
	assert.Equal(t, float64(40), reason["success_percent"])
	assert.Equal(t, float64(1200), reason["avg_latency_ms"])
}

func TestReportStructOutOfSync(t *testing.T) {
	s, err := ReportStruct(&penalty.Report{ProviderID: "gw", Reason: penalty.Reason{Kind: penalty.OutOfSync}})
	require.NoError(t, err)

	reason := s.AsMap()["reason"].(map[string]any)
	assert.Equal(t, map[string]any{"kind": "out_of_sync"}, reason)
}

func TestHeadersCarrier(t *testing.T) {
	var headers []kafkago.Header
	c := carrierFor(&headers)
	c.Set("traceparent", "00-abc-def-01")
	c.Set("traceparent", "00-abc-fed-01")
	c.Set("baggage", "project=p1")

	require.Len(t, headers, 2)
	assert.Equal(t, "00-abc-fed-01", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
}
