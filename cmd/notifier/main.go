// The notifier consumes reservation lifecycle events and fans them out as
// guest notifications. Delivery here is best-effort logging; the hook for a
// real mail or messaging provider is the handleEvent function.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"innkeep/internal/reservations/service"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.EventsTopic,
		cfg.NotifierGroup,
		cfg.EventsDLQTopic,
		handleEvent(cfg),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.EventsTopic, "group", cfg.NotifierGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}

func handleEvent(cfg *config.Config) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event service.ReservationEvent
		if err := msg.DecodeValue(&event); err != nil {
			cfg.Log.Error("Failed to decode reservation event",
				"event_id", msg.GetEventID(),
				"error", err,
			)
			// Undecodable payloads are not retryable; let them park on the DLQ.
			return err
		}

		cfg.Log.Info("Guest notification",
			"event_type", msg.GetEventType(),
			"reservation_id", event.ReservationID,
			"guest_id", event.GuestID,
			"status", event.Status,
			"check_in", event.CheckIn,
			"fee", event.Fee,
		)
		return nil
	}
}
