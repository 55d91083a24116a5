package checker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checker_call_duration_seconds",
		Help:    "Round trip of call actions by addressing mode and outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode", "outcome"})
	baseFailovers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checker_base_endpoint_failovers_total",
		Help: "Base endpoints skipped before a working one was found.",
	}, []string{"chain"})
	flowRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checker_flow_runs_total",
		Help: "Completed flow runs by final status.",
	}, []string{"component", "status"})
	stepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checker_step_failures_total",
		Help: "Failed steps by action kind.",
	}, []string{"kind"})
)
