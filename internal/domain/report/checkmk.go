package report

import (
	"fmt"
	"sort"
	"strings"
)

// CheckMkReport is the outcome of one flow run.
type CheckMkReport struct {
	Status       Status         `json:"status"`
	ServiceName  string         `json:"service_name"`
	Metric       map[string]any `json:"metric"`
	StatusDetail string         `json:"status_detail"`
	Success      bool           `json:"success"`
}

// Healthy reports a sample that both succeeded and concluded Ok.
func (r CheckMkReport) Healthy() bool {
	return r.Success && r.Status == Ok
}

// MetricString renders metrics as "k=v|k=v" sorted by key, or "-" when empty.
func (r CheckMkReport) MetricString() string {
	if len(r.Metric) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(r.Metric))
	for k := range r.Metric {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, r.Metric[k]))
	}
	return strings.Join(parts, "|")
}

// String is the CheckMk local check line consumed by the monitoring pipeline.
func (r CheckMkReport) String() string {
	return fmt.Sprintf("%d %s %s %s", uint8(r.Status), r.ServiceName, r.MetricString(), r.StatusDetail)
}

// Combine merges a correctness report with a benchmark report.
// Benchmark metrics win on key collision.
func Combine(logic, benchmark CheckMkReport) CheckMkReport {
	metric := make(map[string]any, len(logic.Metric)+len(benchmark.Metric))
	for k, v := range logic.Metric {
		metric[k] = v
	}
	for k, v := range benchmark.Metric {
		metric[k] = v
	}
	name := logic.ServiceName
	if name == "" {
		name = benchmark.ServiceName
	}
	return CheckMkReport{
		Status:       Worst(logic.Status, benchmark.Status),
		ServiceName:  name,
		Metric:       metric,
		StatusDetail: fmt.Sprintf("logic: %s; benchmark: %s", logic.StatusDetail, benchmark.StatusDetail),
		Success:      logic.Success && benchmark.Success,
	}
}
