package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/application"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// PaymentEventConsumer listens to gateway payment events and settles the
// matching payment rows.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.PaymentService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.PaymentService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context
// is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	// Our own published events come back on this topic too; only gateway
	// confirmations are of interest here.
	if cloudEvent.Source == events.Source {
		return nil
	}

	switch cloudEvent.Type {
	case events.PaymentConfirmed:
		return c.handleGatewayResult(ctx, cloudEvent, true)
	case events.PaymentFailed:
		return c.handleGatewayResult(ctx, cloudEvent, false)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleGatewayResult(ctx context.Context, cloudEvent kafka.CloudEvent, confirmed bool) error {
	var evt events.PaymentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment event data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing gateway payment result",
		zap.String("transaction_id", evt.TransactionID),
		zap.Bool("confirmed", confirmed),
	)

	var err error
	if confirmed {
		err = c.service.ConfirmGatewayPayment(ctx, evt.TransactionID)
	} else {
		err = c.service.FailGatewayPayment(ctx, evt.TransactionID)
	}
	if err != nil {
		c.logger.Error("failed to settle gateway payment",
			zap.String("transaction_id", evt.TransactionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
