package fisherman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"github.com/NordCoder/Fisherman/internal/obs/retry"
	"github.com/NordCoder/Fisherman/internal/services/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticDirectory struct{ providers []provider.Provider }

func (d staticDirectory) Fetch(context.Context) ([]provider.Provider, []provider.User, error) {
	return d.providers, nil, nil
}

func newRunner(t *testing.T, checker Checker, rep *fakeReporter, pingSrv *httptest.Server, failures FailureThresholds) *Runner {
	t.Helper()
	log := zap.NewNop()
	reg := registry.New()
	return &Runner{
		Log:      log,
		Registry: reg,
		Refresher: &registry.Refresher{
			Log:       log,
			Directory: staticDirectory{providers: []provider.Provider{node, gateway}},
			Registry:  reg,
			Interval:  time.Hour,
			Policy:    retry.Policy{Attempts: 1},
		},
		Sampler:   NewSampler(checker, SamplerConfig{Samples: 1, ResponseTimeKey: rtKey}, log),
		Monitor:   NewMonitor(NewHistory(5), thresholds, failures),
		Ping:      NewPingPong(pingSrv.Client(), PingConfig{Samples: 2, SuccessRatio: 1, Timeout: time.Second}, log),
		Submitter: NewSubmitter(rep, false, log),
		Cfg:       RunnerConfig{LogicInterval: time.Hour, PingInterval: time.Hour},
	}
}

func TestRunner_CheckLogic(t *testing.T) {
	checker := &scriptedChecker{script: map[string][]report.CheckMkReport{
		"n1": {{Status: report.Critical}, {Status: report.Critical}},
		"g1": {ok(int64(5)), ok(int64(5))},
	}}
	rep := newFakeReporter()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := newRunner(t, checker, rep, srv, FailureThresholds{Node: 2, Gateway: 2})
	require.NoError(t, r.Refresher.Refresh(context.Background()))

	assert.Empty(t, r.CheckLogic(context.Background()))
	reported := r.CheckLogic(context.Background())

	require.Len(t, reported, 1)
	assert.Equal(t, "n1", reported[0].ID)
	assert.Contains(t, rep.reasons, "n1")
	assert.Equal(t, []provider.Provider{gateway}, r.Registry.Snapshot())

	require.NoError(t, r.Refresher.Refresh(context.Background()))
	assert.Len(t, r.Registry.Snapshot(), 2)
}

func TestRunner_CheckPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("down"))
	}))
	defer srv.Close()

	p := pingProvider("n1", srv)
	rep := newFakeReporter()
	r := newRunner(t, &scriptedChecker{}, rep, srv, FailureThresholds{Node: 5})
	r.Registry.Replace([]provider.Provider{p}, nil)

	reported := r.CheckPing(context.Background())
	require.Len(t, reported, 1)
	assert.Equal(t, uint32(0), rep.reasons["n1"].SuccessPercent)
	assert.Empty(t, r.Registry.Snapshot())
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	// directory providers carry no ip, so every ping fails
	rep := newFakeReporter()
	r := newRunner(t, &scriptedChecker{}, rep, srv, FailureThresholds{Node: 1})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		rep.mu.Lock()
		defer rep.mu.Unlock()
		return len(rep.reasons) == 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}
