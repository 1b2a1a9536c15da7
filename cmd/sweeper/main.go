// The sweeper periodically expires abandoned pending reservations and
// completes confirmed reservations whose stay has ended.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"innkeep/internal/reservations/policy"
	"innkeep/internal/reservations/repository"
	"innkeep/internal/reservations/service"
	"innkeep/internal/reservations/validator"
	roomsrepo "innkeep/internal/rooms/repository"
	"innkeep/pkg/clock"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
)

const ServiceName = "sweeper"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	reservationService := initService(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting sweeper", "interval", cfg.SweepInterval)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	runSweep(ctx, cfg, reservationService)
	for {
		select {
		case <-ctx.Done():
			cfg.Log.Info("Shutdown signal received, stopping sweeper")
			return
		case <-ticker.C:
			runSweep(ctx, cfg, reservationService)
		}
	}
}

func runSweep(ctx context.Context, cfg *config.Config, svc service.ReservationService) {
	sweepCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	result, err := svc.SweepExpired(sweepCtx)
	if err != nil {
		cfg.Log.Error("Sweep failed", "error", err)
		return
	}

	if result.ExpiredPending > 0 || result.CompletedConfirmed > 0 {
		cfg.Log.Info("Sweep applied transitions",
			"expired_pending", result.ExpiredPending,
			"completed_confirmed", result.CompletedConfirmed,
		)
	}
}

func initService(cfg *config.Config) service.ReservationService {
	notifier := initNotifier(cfg)

	return service.NewReservationService(
		repository.NewMongoReservationRepository(cfg),
		repository.NewRoomLockRepository(cfg),
		roomsrepo.NewMongoRoomCatalog(cfg),
		validator.NewReservationValidator(cfg.Log),
		policy.FromConfig(cfg),
		notifier,
		clock.System(),
		cfg,
	)
}

func initNotifier(cfg *config.Config) service.Notifier {
	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.EventsTopic, cfg.EventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return service.NopNotifier{}
	}
	return service.NewKafkaNotifier(cfg, producer, ServiceName)
}
