package fisherman

import (
	"context"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/services/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	loopLogic = "check_logic"
	loopPing  = "check_ping"
)

type RunnerConfig struct {
	LogicInterval time.Duration
	PingInterval  time.Duration
}

// Runner drives the data-check and ping-pong loops plus the registry refresh.
type Runner struct {
	Log       *zap.Logger
	Registry  *registry.Registry
	Refresher *registry.Refresher
	Sampler   *Sampler
	Monitor   *Monitor
	Ping      *PingPong
	Submitter *Submitter
	Cfg       RunnerConfig
}

// CheckLogic samples the registry, records the cycle and reports providers
// that stayed unhealthy for long enough.
func (r *Runner) CheckLogic(ctx context.Context) []provider.Provider {
	start := time.Now()
	defer func() { cycleDuration.WithLabelValues(loopLogic).Observe(time.Since(start).Seconds()) }()

	ctx, span := otel.Tracer("fisherman.runner").Start(ctx, "fisherman.check_logic")
	defer span.End()

	providers := r.Registry.Snapshot()
	cycle := r.Sampler.Cycle(ctx, providers)
	if ctx.Err() != nil {
		return nil
	}
	r.Monitor.Record(cycle)

	var bad []Bad
	for _, e := range cycle {
		if r.Monitor.Healthy(e) || !r.Monitor.ShouldReport(e.Provider) {
			continue
		}
		bad = append(bad, Bad(e))
	}
	span.SetAttributes(
		attribute.Int("providers", len(providers)),
		attribute.Int("sampled", len(cycle)),
		attribute.Int("bad", len(bad)),
	)
	r.Log.Info("check logic cycle done",
		zap.Int("providers", len(providers)),
		zap.Int("sampled", len(cycle)),
		zap.Int("bad", len(bad)))

	return r.report(ctx, loopLogic, bad)
}

// CheckPing probes every provider and reports those below the ping ratio
// without consulting the history.
func (r *Runner) CheckPing(ctx context.Context) []provider.Provider {
	start := time.Now()
	defer func() { cycleDuration.WithLabelValues(loopPing).Observe(time.Since(start).Seconds()) }()

	ctx, span := otel.Tracer("fisherman.runner").Start(ctx, "fisherman.check_ping")
	defer span.End()

	providers := r.Registry.Snapshot()
	bad := r.Ping.Check(ctx, providers)
	if ctx.Err() != nil {
		return nil
	}
	span.SetAttributes(attribute.Int("providers", len(providers)), attribute.Int("bad", len(bad)))
	r.Log.Info("ping cycle done", zap.Int("providers", len(providers)), zap.Int("bad", len(bad)))

	return r.report(ctx, loopPing, bad)
}

func (r *Runner) report(ctx context.Context, loop string, bad []Bad) []provider.Provider {
	if len(bad) == 0 {
		return nil
	}
	badProviders.WithLabelValues(loop).Add(float64(len(bad)))
	reported := r.Submitter.Submit(ctx, loop, bad)
	ids := make([]string, 0, len(reported))
	for _, p := range reported {
		ids = append(ids, p.ID)
	}
	r.Registry.Exclude(ids...)
	return reported
}

// Run refreshes the registry once, then runs every loop until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Refresher.Refresh(ctx); err != nil {
		r.Log.Warn("initial provider list refresh failed", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Refresher.Run(gctx) })
	g.Go(func() error { return loop(gctx, r.Cfg.LogicInterval, func(ctx context.Context) { r.CheckLogic(ctx) }) })
	g.Go(func() error { return loop(gctx, r.Cfg.PingInterval, func(ctx context.Context) { r.CheckPing(ctx) }) })
	return g.Wait()
}

func loop(ctx context.Context, every time.Duration, tick func(context.Context)) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(ctx)
		}
	}
}
