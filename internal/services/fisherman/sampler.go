package fisherman

import (
	"context"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"go.uber.org/zap"
)

type Checker interface {
	CheckAll(ctx context.Context, tasks []string, providers []provider.Provider) map[string]report.CheckMkReport
}

type SamplerConfig struct {
	Tasks           []string
	Samples         int
	Interval        time.Duration
	ResponseTimeKey string
}

// Sampler runs the check flows several times per cycle and aggregates.
type Sampler struct {
	checker Checker
	cfg     SamplerConfig
	log     *zap.Logger
}

func NewSampler(checker Checker, cfg SamplerConfig, log *zap.Logger) *Sampler {
	if cfg.Samples <= 0 {
		cfg.Samples = 1
	}
	return &Sampler{checker: checker, cfg: cfg, log: log.With(zap.String("component", "fisherman.sampler"))}
}

// Cycle returns one aggregated entry per provider that produced at least one
// report. A cancelled ctx ends sampling early; missing samples then count as
// failures.
func (s *Sampler) Cycle(ctx context.Context, providers []provider.Provider) Cycle {
	byID := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}

	collected := make(map[string][]report.CheckMkReport, len(providers))
	for n := 0; n < s.cfg.Samples; n++ {
		if ctx.Err() != nil {
			break
		}
		reports := s.checker.CheckAll(ctx, s.cfg.Tasks, providers)
		s.log.Debug("sample collected", zap.Int("round", n+1), zap.Int("reports", len(reports)))
		for id, r := range reports {
			collected[id] = append(collected[id], r)
		}

		if n < s.cfg.Samples-1 && s.cfg.Interval > 0 {
			t := time.NewTimer(s.cfg.Interval)
			select {
			case <-ctx.Done():
				t.Stop()
			case <-t.C:
			}
		}
	}

	out := make(Cycle, len(collected))
	for id, reports := range collected {
		p, ok := byID[id]
		if !ok {
			continue
		}
		out[id] = Entry{
			Provider: p,
			Report:   Aggregate(reports, uint64(s.cfg.Samples), s.cfg.ResponseTimeKey),
		}
	}
	return out
}
