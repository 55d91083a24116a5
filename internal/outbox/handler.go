package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/outbox"
	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"github.com/NordCoder/Fisherman/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnsupportedKind = errors.New("unsupported outbox kind")

var (
	outboxHandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Latency of outbox handlers including retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outboxHandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Errors in outbox handlers (after retries).",
	}, []string{"kind"})
)

func instrument(kind string, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	tr := otel.Tracer("outbox.handler")
	if pol.Name == "" {
		pol.Name = "outbox_" + kind
	}
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle", trace.WithAttributes(attribute.String("outbox.kind", kind)))
		defer span.End()

		start := time.Now()
		err := retry.Do(ctx, func() error { return h(ctx, data) }, pol)
		outboxHandlerLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			outboxHandlerErrors.WithLabelValues(kind).Inc()
		}
		return err
	}
}

// EncodeProviderReport is the outbox payload of KindProviderReport.
func EncodeProviderReport(r *penalty.Report) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode provider report: %w", err)
	}
	return b, nil
}

func MakeGlobalOutboxHandler(pub penalty.Events, pol retry.Policy) outbox.GlobalHandler {
	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		switch kind {
		case outbox.KindProviderReport:
			base := func(ctx context.Context, data []byte) error {
				var r penalty.Report
				if err := json.Unmarshal(data, &r); err != nil {
					return fmt.Errorf("unmarshal provider-report payload: %w", err)
				}
				return pub.PublishReport(ctx, &r)
			}
			return instrument(kind.String(), base, pol), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
		}
	}
}
