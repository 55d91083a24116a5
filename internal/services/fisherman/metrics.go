package fisherman

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fisherman_cycle_duration_seconds",
		Help:    "Duration of monitoring cycles by loop.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"loop"})
	badProviders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fisherman_bad_providers_total",
		Help: "Providers selected for a penalty by loop.",
	}, []string{"loop"})
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fisherman_report_submissions_total",
		Help: "Penalty submissions by loop and outcome.",
	}, []string{"loop", "outcome"})
	pingRatio = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fisherman_ping_success_ratio",
		Help:    "Per-provider ping success ratio of a ping cycle.",
		Buckets: []float64{0.5, 0.8, 0.9, 0.95, 0.99, 1},
	}, []string{"component"})
	projectQuota = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fisherman_project_quota",
		Help: "Latest quota announced for a project.",
	}, []string{"project_id", "blockchain"})
)
