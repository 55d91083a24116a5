package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/report"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ErrNoResults = errors.New("benchmark produced no results")

// Target is the provider endpoint under load.
type Target struct {
	URL   string
	Host  string
	Token string
	Body  []byte
}

type Params struct {
	Duration         time.Duration `mapstructure:"duration"`
	Rate             int           `mapstructure:"rate"`
	Connections      int           `mapstructure:"connections"`
	Timeout          time.Duration `mapstructure:"timeout"`
	LatencyThreshold time.Duration `mapstructure:"latency_threshold"`
}

func (p Params) withDefaults() Params {
	if p.Duration <= 0 {
		p.Duration = 15 * time.Second
	}
	if p.Rate <= 0 {
		p.Rate = 50
	}
	if p.Connections <= 0 {
		p.Connections = 10
	}
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Second
	}
	if p.LatencyThreshold <= 0 {
		p.LatencyThreshold = 500 * time.Millisecond
	}
	return p
}

type Runner struct {
	client *http.Client
	log    *zap.Logger
}

// NewRunner attacks through client; its transport carries the tracing.
func NewRunner(client *http.Client, log *zap.Logger) *Runner {
	return &Runner{client: client, log: log.With(zap.String("component", "benchmark.runner"))}
}

// Run loads t at a constant rate for the configured duration. Cancelling ctx
// stops the attack and returns the context error.
func (r *Runner) Run(ctx context.Context, t Target, p Params) (report.Benchmark, error) {
	p = p.withDefaults()

	ctx, span := otel.Tracer("benchmark.runner").Start(ctx, "benchmark.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("target.host", t.Host),
		attribute.Int("rate", p.Rate),
		attribute.String("duration", p.Duration.String()),
	)

	header := http.Header{"Content-Type": []string{"application/json"}}
	if t.Host != "" {
		header.Set("Host", t.Host)
	}
	if t.Token != "" {
		header.Set("X-Api-Key", t.Token)
	}
	method := http.MethodGet
	if len(t.Body) > 0 {
		method = http.MethodPost
	}
	targeter := vegeta.NewStaticTargeter(vegeta.Target{Method: method, URL: t.URL, Body: t.Body, Header: header})

	client := *r.client
	client.Timeout = p.Timeout
	// Client goes last: the transport options of vegeta assume *http.Transport.
	attacker := vegeta.NewAttacker(
		vegeta.Workers(uint64(p.Connections)),
		vegeta.MaxWorkers(uint64(p.Connections*2)),
		vegeta.Client(&client),
	)

	stop := context.AfterFunc(ctx, func() { attacker.Stop() })
	defer stop()

	var (
		metrics   vegeta.Metrics
		latencies []time.Duration
	)
	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: p.Rate, Per: time.Second}, p.Duration, t.Host) {
		metrics.Add(res)
		latencies = append(latencies, res.Latency)
	}
	metrics.Close()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return report.Benchmark{}, err
	}
	if metrics.Requests == 0 {
		span.RecordError(ErrNoResults)
		return report.Benchmark{}, fmt.Errorf("%w: %s", ErrNoResults, t.URL)
	}

	b := summarize(&metrics, latencies, p.LatencyThreshold)
	r.log.Debug("benchmark done",
		zap.String("url", t.URL),
		zap.Uint64("requests", b.Requests),
		zap.Duration("latency_avg", b.LatencyAvg),
		zap.Float64("success_percent", b.SuccessPercent))
	return b, nil
}

func summarize(m *vegeta.Metrics, latencies []time.Duration, threshold time.Duration) report.Benchmark {
	var low int
	for _, l := range latencies {
		if l < threshold {
			low++
		}
	}
	return report.Benchmark{
		Requests:          m.Requests,
		Duration:          m.Duration + m.Wait,
		LatencyAvg:        m.Latencies.Mean,
		LatencyStdev:      stdev(latencies, m.Latencies.Mean),
		LatencyMax:        m.Latencies.Max,
		LatencyP90:        m.Latencies.P90,
		LatencyP95:        m.Latencies.P95,
		LatencyP99:        m.Latencies.P99,
		PercentLowLatency: percent(low, len(latencies)),
		SuccessPercent:    m.Success * 100,
		Throughput:        m.Throughput,
	}
}

func stdev(latencies []time.Duration, mean time.Duration) time.Duration {
	if len(latencies) < 2 {
		return 0
	}
	var sum float64
	for _, l := range latencies {
		d := float64(l - mean)
		sum += d * d
	}
	return time.Duration(math.Sqrt(sum / float64(len(latencies))))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
