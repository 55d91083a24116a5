package benchmark

import (
	"fmt"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/report"
)

type Thresholds struct {
	SuccessPercent    float64 `mapstructure:"success_percent"`
	PercentLowLatency float64 `mapstructure:"percent_low_latency"`
}

// ToCheckMk rates a benchmark. A low success rate is Critical; too few fast
// responses is a Warning.
func ToCheckMk(b report.Benchmark, serviceName string, t Thresholds) report.CheckMkReport {
	status := report.Ok
	var problems []string
	if b.PercentLowLatency < t.PercentLowLatency {
		status = report.Warning
		problems = append(problems, fmt.Sprintf("%.1f%% fast responses < %.1f%%", b.PercentLowLatency, t.PercentLowLatency))
	}
	if b.SuccessPercent < t.SuccessPercent {
		status = report.Critical
		problems = append(problems, fmt.Sprintf("success %.1f%% < %.1f%%", b.SuccessPercent, t.SuccessPercent))
	}

	detail := fmt.Sprintf("%d requests in %s, avg latency %s", b.Requests, b.Duration.Round(time.Millisecond), b.LatencyAvg.Round(time.Microsecond))
	for _, p := range problems {
		detail += "; " + p
	}

	return report.CheckMkReport{
		Status:      status,
		ServiceName: serviceName,
		Metric: map[string]any{
			"bench_requests":            b.Requests,
			"bench_latency_avg_ms":      b.LatencyAvg.Milliseconds(),
			"bench_latency_stdev_ms":    b.LatencyStdev.Milliseconds(),
			"bench_latency_max_ms":      b.LatencyMax.Milliseconds(),
			"bench_latency_p90_ms":      b.LatencyP90.Milliseconds(),
			"bench_latency_p95_ms":      b.LatencyP95.Milliseconds(),
			"bench_latency_p99_ms":      b.LatencyP99.Milliseconds(),
			"bench_percent_low_latency": round2(b.PercentLowLatency),
			"bench_success_percent":     round2(b.SuccessPercent),
			"bench_throughput":          round2(b.Throughput),
		},
		StatusDetail: detail,
		Success:      status != report.Critical,
	}
}

func round2(v float64) float64 { return float64(int64(v*100+0.5)) / 100 }
