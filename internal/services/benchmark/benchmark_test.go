package benchmark

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunner_Run(t *testing.T) {
	var (
		hits atomic.Int32
		host atomic.Value
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		host.Store(r.Host + "|" + r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"result":"0x1"}`))
	}))
	defer srv.Close()

	r := NewRunner(srv.Client(), zap.NewNop())
	b, err := r.Run(context.Background(),
		Target{URL: srv.URL, Host: "n1.node.mbr.example.org", Token: "tok", Body: []byte(`{"id":1}`)},
		Params{Duration: 200 * time.Millisecond, Rate: 50, Connections: 2, LatencyThreshold: time.Second})
	require.NoError(t, err)

	assert.Positive(t, b.Requests)
	assert.Equal(t, uint64(hits.Load()), b.Requests)
	assert.Equal(t, 100.0, b.SuccessPercent)
	assert.Equal(t, 100.0, b.PercentLowLatency)
	assert.LessOrEqual(t, b.LatencyAvg, b.LatencyMax)
	assert.Equal(t, "n1.node.mbr.example.org|tok", host.Load())
}

func TestRunner_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(srv.Client(), zap.NewNop()).Run(ctx, Target{URL: srv.URL}, Params{Duration: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_CancelStopsAttack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewRunner(srv.Client(), zap.NewNop()).Run(ctx, Target{URL: srv.URL}, Params{Duration: 30 * time.Second, Rate: 20})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestStdev(t *testing.T) {
	ls := []time.Duration{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, time.Duration(2), stdev(ls, 5))
	assert.Zero(t, stdev(ls[:1], 2))
}

func TestToCheckMk(t *testing.T) {
	th := Thresholds{SuccessPercent: 95, PercentLowLatency: 80}
	base := report.Benchmark{Requests: 100, LatencyAvg: 20 * time.Millisecond, SuccessPercent: 100, PercentLowLatency: 90}

	good := ToCheckMk(base, "svc", th)
	assert.Equal(t, report.Ok, good.Status)
	assert.True(t, good.Success)
	assert.Equal(t, "svc", good.ServiceName)
	assert.Equal(t, int64(20), good.Metric["bench_latency_avg_ms"])

	slow := base
	slow.PercentLowLatency = 50
	got := ToCheckMk(slow, "svc", th)
	assert.Equal(t, report.Warning, got.Status)
	assert.True(t, got.Success)
	assert.Contains(t, got.StatusDetail, "fast responses")

	failing := slow
	failing.SuccessPercent = 60
	got = ToCheckMk(failing, "svc", th)
	assert.Equal(t, report.Critical, got.Status)
	assert.False(t, got.Success)
}
