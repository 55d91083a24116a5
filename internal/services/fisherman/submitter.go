package fisherman

import (
	"context"

	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/domain/report"
	"go.uber.org/zap"
)

// Bad is a provider selected for a penalty together with the evidence.
type Bad struct {
	Provider provider.Provider
	Report   report.ComponentReport
}

func (b Bad) Reason() penalty.Reason {
	var latency uint32
	if b.Report.ResponseTimeMs != nil {
		latency = *b.Report.ResponseTimeMs
	}
	return penalty.NewBadPerformance(b.Report.RequestNumber, b.Report.SuccessPercent(), latency)
}

type Submitter struct {
	reporter penalty.Reporter
	noReport bool
	log      *zap.Logger
}

func NewSubmitter(reporter penalty.Reporter, noReport bool, log *zap.Logger) *Submitter {
	return &Submitter{reporter: reporter, noReport: noReport, log: log.With(zap.String("component", "fisherman.submitter"))}
}

// Submit reports every bad provider and returns the ones that were accepted.
// Failures are logged and skipped; in no-report mode nothing is submitted.
func (s *Submitter) Submit(ctx context.Context, source string, bad []Bad) []provider.Provider {
	if len(bad) == 0 {
		return nil
	}
	var reported []provider.Provider
	for _, b := range bad {
		reason := b.Reason()
		log := s.log.With(
			zap.String("source", source),
			zap.String("provider_id", b.Provider.ID),
			zap.Stringer("component", b.Provider.ComponentType),
			zap.Stringer("reason", reason),
		)
		if s.noReport {
			log.Info("bad provider detected (no-report mode)")
			continue
		}
		if err := s.reporter.Submit(ctx, b.Provider, reason); err != nil {
			submissions.WithLabelValues(source, "error").Inc()
			log.Warn("report submission failed", zap.Error(err))
			continue
		}
		submissions.WithLabelValues(source, "ok").Inc()
		log.Info("provider reported")
		reported = append(reported, b.Provider)
	}
	return reported
}
