package fisherman

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/NordCoder/Fisherman/internal/domain/report"
)

// Aggregate reduces the samples of one provider. requests is the configured
// sample count; samples that never arrived count as failures.
func Aggregate(reports []report.CheckMkReport, requests uint64, responseTimeKey string) report.ComponentReport {
	var (
		success uint64
		sum     uint64
		n       uint64
	)
	for _, r := range reports {
		if r.Healthy() {
			success++
		}
		if ms, ok := latency(r.Metric[responseTimeKey]); ok {
			sum += ms
			n++
		}
	}

	out := report.ComponentReport{RequestNumber: requests, SuccessNumber: success}
	if n > 0 {
		out.ResponseTimeMs = report.Ms(uint32(min(sum/n, math.MaxUint32)))
	}
	return out
}

func latency(v any) (uint64, bool) {
	switch x := v.(type) {
	case int:
		return uint64(max(x, 0)), true
	case int64:
		return uint64(max(x, 0)), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case float64:
		return uint64(math.Max(x, 0)), true
	case json.Number:
		f, err := x.Float64()
		return uint64(math.Max(f, 0)), err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return uint64(math.Max(f, 0)), err == nil
	default:
		return 0, false
	}
}
