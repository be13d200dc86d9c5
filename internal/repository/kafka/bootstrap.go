package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapProducer makes sure topic exists before returning a producer for it.
func BootstrapProducer(ctx context.Context, brokers []string, topic string, logger *zap.Logger) *Producer {
	if len(brokers) > 0 {
		_ = EnsureTopic(ctx, brokers, TopicSpec{
			Name:              topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
			MaxWait:           5 * time.Second,
		}, logger)
	}
	return NewProducer(brokers, topic).WithLogger(logger)
}
