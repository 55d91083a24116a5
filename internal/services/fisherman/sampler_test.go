package fisherman

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedChecker returns the next scripted report per provider on each round.
type scriptedChecker struct {
	mu     sync.Mutex
	rounds int
	script map[string][]report.CheckMkReport
	tasks  []string
}

func (c *scriptedChecker) CheckAll(_ context.Context, tasks []string, providers []provider.Provider) map[string]report.CheckMkReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
	out := map[string]report.CheckMkReport{}
	for _, p := range providers {
		s := c.script[p.ID]
		if c.rounds < len(s) {
			out[p.ID] = s[c.rounds]
		}
	}
	c.rounds++
	return out
}

func TestSampler_Cycle(t *testing.T) {
	fail := report.CheckMkReport{Status: report.Critical}
	c := &scriptedChecker{script: map[string][]report.CheckMkReport{
		"n1": {ok(int64(10)), ok(int64(30)), fail},
		"g1": {ok(int64(100))},
	}}
	s := NewSampler(c, SamplerConfig{Tasks: []string{"RoundTripTime"}, Samples: 3, ResponseTimeKey: rtKey}, zap.NewNop())

	got := s.Cycle(context.Background(), []provider.Provider{node, gateway, dapi})

	assert.Equal(t, 3, c.rounds)
	assert.Equal(t, []string{"RoundTripTime"}, c.tasks)
	require.Len(t, got, 2)

	n := got["n1"]
	assert.Equal(t, node, n.Provider)
	assert.Equal(t, uint64(3), n.Report.RequestNumber)
	assert.Equal(t, uint64(2), n.Report.SuccessNumber)
	assert.Equal(t, uint32(20), *n.Report.ResponseTimeMs)

	g := got["g1"]
	assert.Equal(t, uint64(3), g.Report.RequestNumber)
	assert.Equal(t, uint64(1), g.Report.SuccessNumber)

	_, present := got["d1"]
	assert.False(t, present)
}

func TestSampler_CancelStopsEarly(t *testing.T) {
	c := &scriptedChecker{script: map[string][]report.CheckMkReport{"n1": {ok(1), ok(1), ok(1)}}}
	s := NewSampler(c, SamplerConfig{Samples: 3, Interval: time.Hour, ResponseTimeKey: rtKey}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	got := s.Cycle(ctx, []provider.Provider{node})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, c.rounds)
	assert.Equal(t, uint64(1), got["n1"].Report.SuccessNumber)
	assert.Equal(t, uint64(3), got["n1"].Report.RequestNumber)
}
