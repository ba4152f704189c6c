package main

import (
	"curbside/internal/pickups/handler"
	"curbside/internal/pickups/repository"
	"curbside/internal/pickups/service"
	"curbside/internal/pickups/validator"
	"curbside/pkg/app"
	"curbside/pkg/config"
	"curbside/pkg/events"
	"curbside/pkg/kafka"
	kafka_config "curbside/pkg/kafka/config"
	"curbside/pkg/slots"
)

const ServiceName = "pickups"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Pickups service")

	producer := initProducer(cfg)
	if producer != nil {
		defer producer.Close()
	}

	window := slots.NewWindow(cfg.SlotStartHour, cfg.SlotEndHour)
	bookingService := initServices(cfg, window, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewPickupHandler(bookingService, window, cfg.Log))
	serverApp.Run()
}

// initProducer wires the event stream. The service degrades to running
// without notifications when the broker configuration is unusable; bookings
// must not depend on Kafka being up.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka configuration invalid, running without event publishing", "error", err)
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, events.TopicPickupEvents, events.TopicPickupEventsDLQ)
	if err != nil {
		cfg.Log.Warn("Failed to create Kafka producer, running without event publishing", "error", err)
		return nil
	}

	cfg.Log.Info("Kafka producer initialized", "topic", events.TopicPickupEvents, "brokers", kafkaCfg.Brokers)
	return producer
}

func initServices(cfg *config.Config, window *slots.Window, producer *kafka.Producer) service.BookingService {
	requestValidator := validator.NewRequestValidator(window, cfg.MaxNotesLength, cfg.Log)
	requestRepo := repository.NewMongoRequestRepository(cfg)

	var publisher service.EventPublisher
	if producer != nil {
		publisher = producer
	}

	bookingService := service.NewBookingService(
		requestRepo,
		requestValidator,
		window,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"slot_window", window.Labels(),
	)
	return bookingService
}
