package fisherman

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type PingConfig struct {
	Parallel     int
	Samples      int
	SuccessRatio float64
	Response     string
	Timeout      time.Duration
	Scheme       string
	Domain       string
}

// PingPong samples GET /ping on every provider and flags those whose success
// ratio falls below the threshold.
type PingPong struct {
	client *http.Client
	cfg    PingConfig
	log    *zap.Logger
}

func NewPingPong(client *http.Client, cfg PingConfig, log *zap.Logger) *PingPong {
	if cfg.Parallel <= 0 {
		cfg.Parallel = 10
	}
	if cfg.Samples <= 0 {
		cfg.Samples = 1
	}
	if cfg.Response == "" {
		cfg.Response = "pong"
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	return &PingPong{client: client, cfg: cfg, log: log.With(zap.String("component", "fisherman.ping"))}
}

// Check returns the providers below the success ratio with a report whose
// latency is unset.
func (pp *PingPong) Check(ctx context.Context, providers []provider.Provider) []Bad {
	var (
		mu      sync.Mutex
		success = make(map[string]int, len(providers))
		sem     = semaphore.NewWeighted(int64(pp.cfg.Parallel))
	)

	for round := 0; round < pp.cfg.Samples; round++ {
		var wg sync.WaitGroup
		for _, p := range providers {
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				if pp.probe(ctx, p) {
					mu.Lock()
					success[p.ID]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if ctx.Err() != nil {
			return nil
		}
	}

	var bad []Bad
	for _, p := range providers {
		ok := success[p.ID]
		ratio := float64(ok) / float64(pp.cfg.Samples)
		pingRatio.WithLabelValues(p.ComponentType.String()).Observe(ratio)
		pp.log.Debug("ping ratio", zap.String("provider_id", p.ID), zap.Float64("ratio", ratio))
		if ratio < pp.cfg.SuccessRatio {
			bad = append(bad, Bad{
				Provider: p,
				Report: report.ComponentReport{
					RequestNumber: uint64(pp.cfg.Samples),
					SuccessNumber: uint64(ok),
				},
			})
		}
	}
	return bad
}

func (pp *PingPong) probe(ctx context.Context, p provider.Provider) bool {
	ctx, cancel := context.WithTimeout(ctx, pp.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pp.cfg.Scheme+"://"+p.IP+"/ping", nil)
	if err != nil {
		return false
	}
	req.Header.Set("X-Api-Key", p.Token)
	req.Host = p.HostHeader(pp.cfg.Domain)

	resp, err := pp.client.Do(req)
	if err != nil {
		pp.log.Debug("ping failed", zap.String("provider_id", p.ID), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(body)) == pp.cfg.Response
}
