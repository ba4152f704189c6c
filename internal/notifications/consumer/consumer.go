package consumer

import (
	"context"
	"errors"
	"fmt"

	notificationerrors "curbside/internal/notifications/errors"
	"curbside/internal/notifications/service"
	"curbside/pkg/events"
	"curbside/pkg/kafka"
	kafka_config "curbside/pkg/kafka/config"
	"curbside/pkg/logger"
)

const GroupID = "notifications-service"

// PickupEventConsumer reads the pickup event stream and materializes each
// event into the notification feed.
type PickupEventConsumer struct {
	consumer *kafka.Consumer
	log      *logger.Logger
}

func NewPickupEventConsumer(cfg *kafka_config.Config, svc service.NotificationService, log *logger.Logger) (*PickupEventConsumer, error) {
	consumer, err := kafka.NewConsumer(cfg, events.TopicPickupEvents, GroupID, events.TopicPickupEventsDLQ, eventHandler(svc, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create pickup event consumer: %w", err)
	}

	return &PickupEventConsumer{
		consumer: consumer,
		log:      log,
	}, nil
}

// eventHandler turns one consumed message into a stored notification.
// Malformed payloads and events the feed does not understand are permanent
// failures and go straight to the DLQ; store failures are transient and get
// retried.
func eventHandler(svc service.NotificationService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event events.PickupEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError(fmt.Sprintf("undecodable pickup event %s", msg.GetEventID()), err)
		}

		log.Debug("Pickup event received",
			"event_id", msg.GetEventID(),
			"type", event.Type,
			"user_id", event.UserID,
		)

		if err := svc.RecordFromEvent(ctx, event); err != nil {
			if errors.Is(err, notificationerrors.ErrUnsupportedEvent) {
				return kafka.NewPermanentError("pickup event cannot become a notification", err)
			}
			return kafka.NewTransientError("failed to store notification", err)
		}
		return nil
	}
}

// Start blocks until ctx is cancelled.
func (c *PickupEventConsumer) Start(ctx context.Context) error {
	c.log.Info("Pickup event consumer starting",
		"topic", events.TopicPickupEvents,
		"group_id", GroupID,
	)
	return c.consumer.Start(ctx)
}

func (c *PickupEventConsumer) Close() error {
	return c.consumer.Close()
}
