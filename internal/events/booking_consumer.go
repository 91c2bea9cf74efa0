package events

import (
	"context"

	"github.com/GoRent-Marketplace/service-rental/internal/common/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingEventHandler reacts to decoded booking events.
type BookingEventHandler interface {
	OnBookingCreated(ctx context.Context, evt BookingCreatedEvent) error
	OnBookingStatusChanged(ctx context.Context, evt BookingStatusChangedEvent) error
}

// BookingEventConsumer listens to the booking topic and dispatches typed events.
type BookingEventConsumer struct {
	consumer *kafka.Consumer
	handler  BookingEventHandler
	logger   *zap.Logger
}

// NewBookingEventConsumer creates a new BookingEventConsumer.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	handler BookingEventHandler,
	logger *zap.Logger,
) *BookingEventConsumer {
	return &BookingEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger),
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingCreated:
		var evt BookingCreatedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse BookingCreatedEvent data", zap.Error(err))
			return nil
		}
		return c.handler.OnBookingCreated(ctx, evt)
	case BookingStatusChanged:
		var evt BookingStatusChangedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse BookingStatusChangedEvent data", zap.Error(err))
			return nil
		}
		return c.handler.OnBookingStatusChanged(ctx, evt)
	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}
