package report

import "time"

// Benchmark is the typed result of one load test against a provider.
type Benchmark struct {
	Requests          uint64        `json:"requests"`
	Duration          time.Duration `json:"duration"`
	LatencyAvg        time.Duration `json:"latency_avg"`
	LatencyStdev      time.Duration `json:"latency_stdev"`
	LatencyMax        time.Duration `json:"latency_max"`
	LatencyP90        time.Duration `json:"latency_p90"`
	LatencyP95        time.Duration `json:"latency_p95"`
	LatencyP99        time.Duration `json:"latency_p99"`
	PercentLowLatency float64       `json:"percent_low_latency"`
	SuccessPercent    float64       `json:"success_percent"`
	Throughput        float64       `json:"throughput"`
}
