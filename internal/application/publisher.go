package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// eventPublisher wraps fire-and-forget event publishing shared by the
// application services. Publish failures are logged, never surfaced:
// the write that preceded them has already committed.
type eventPublisher struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

func (p *eventPublisher) publish(ctx context.Context, topic, eventType string, data interface{}) {
	if p.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
