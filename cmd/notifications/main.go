package main

import (
	"context"
	"errors"

	"curbside/internal/notifications/consumer"
	"curbside/internal/notifications/handler"
	"curbside/internal/notifications/repository"
	"curbside/internal/notifications/service"
	"curbside/pkg/app"
	"curbside/pkg/config"
	kafka_config "curbside/pkg/kafka/config"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Notifications service")

	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	notificationService := service.NewNotificationService(notificationRepo, cfg)

	eventConsumer := initConsumer(cfg, notificationService)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := eventConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Pickup event consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewNotificationHandler(notificationService, cfg.Log))
	serverApp.Run()

	stopConsumer()
	if err := eventConsumer.Close(); err != nil {
		cfg.Log.Error("Failed to close pickup event consumer", "error", err)
	}
}

// The feed is built entirely from the event stream, so a broken Kafka setup
// is fatal here, unlike in the pickups service.
func initConsumer(cfg *config.Config, svc service.NotificationService) *consumer.PickupEventConsumer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Kafka configuration invalid", "error", err)
	}

	eventConsumer, err := consumer.NewPickupEventConsumer(kafkaCfg, svc, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create pickup event consumer", "error", err)
	}

	cfg.Log.Info("Pickup event consumer initialized", "brokers", kafkaCfg.Brokers)
	return eventConsumer
}
