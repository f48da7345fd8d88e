package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vehiclebooking/service-booking/pkg/kafka"
)

// RouteStats records live route popularity as booking events arrive.
type RouteStats interface {
	IncrementRoute(ctx context.Context, source, destination string) error
}

// AnalyticsConsumer feeds booking events into the live analytics counters.
type AnalyticsConsumer struct {
	consumer *kafka.Consumer
	routes   RouteStats
	logger   *zap.Logger
}

func NewAnalyticsConsumer(consumer *kafka.Consumer, routes RouteStats, logger *zap.Logger) *AnalyticsConsumer {
	return &AnalyticsConsumer{
		consumer: consumer,
		routes:   routes,
		logger:   logger,
	}
}

// Start consumes until ctx is cancelled.
func (c *AnalyticsConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting analytics consumer", zap.String("topic", TopicBookingEvents))
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *AnalyticsConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed event", zap.Error(err))
		return nil
	}

	switch event.Type {
	case BookingCreated:
		var payload BookingCreatedEvent
		if err := event.ParseData(&payload); err != nil {
			c.logger.Warn("skipping malformed booking.new payload", zap.Error(err))
			return nil
		}
		if err := c.routes.IncrementRoute(ctx, payload.Source, payload.Destination); err != nil {
			c.logger.Error("failed to update route counters",
				zap.String("booking_id", payload.BookingID),
				zap.Error(err))
			return err
		}
		c.logger.Debug("route counter updated",
			zap.String("source", payload.Source),
			zap.String("destination", payload.Destination))
	default:
		// Status changes and reminders are not aggregated here.
	}

	return nil
}

func (c *AnalyticsConsumer) Close() error {
	return c.consumer.Close()
}
