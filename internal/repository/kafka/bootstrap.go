package kafka

import (
	"context"

	"go.uber.org/zap"
)

// BootstrapConsumer makes sure the topic exists before the reader joins its group.
func BootstrapConsumer(ctx context.Context, cfg ConsumerConfig, spec TopicSpec, log *zap.Logger) *Consumer {
	spec.Name = cfg.Topic
	if err := EnsureTopic(ctx, cfg.Brokers, spec, log); err != nil {
		log.Warn("ensure topic failed; consuming anyway", zap.String("topic", cfg.Topic), zap.Error(err))
	}
	return NewConsumer(cfg, log)
}
