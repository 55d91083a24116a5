package checker

import "github.com/NordCoder/Fisherman/internal/domain/report"

// StepResult accumulates step outputs of one flow run under
// "{return_name}_{field}" keys.
type StepResult map[string]string

// ActionResponse is the uniform outcome of a call or compare action.
type ActionResponse struct {
	Success    bool
	Conclude   report.Status
	ReturnName string
	Result     map[string]string
	Message    string
}

// ResponseTimeKey is injected into every call result with the measured
// round trip in milliseconds.
const ResponseTimeKey = "response_time_ms"
