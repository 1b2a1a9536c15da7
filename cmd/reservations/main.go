package main

import (
	"innkeep/internal/reservations/handler"
	"innkeep/internal/reservations/policy"
	"innkeep/internal/reservations/repository"
	"innkeep/internal/reservations/service"
	"innkeep/internal/reservations/validator"
	roomsrepo "innkeep/internal/rooms/repository"
	"innkeep/pkg/app"
	"innkeep/pkg/clock"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")
	reservationService, rooms := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, rooms, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ReservationService, roomsrepo.RoomCatalog) {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewRoomLockRepository(cfg)
	roomCatalog := roomsrepo.NewMongoRoomCatalog(cfg)

	notifier := initNotifier(cfg)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		roomCatalog,
		reservationValidator,
		policy.FromConfig(cfg),
		notifier,
		clock.System(),
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, roomCatalog
}

func initNotifier(cfg *config.Config) service.Notifier {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return service.NopNotifier{}
	}

	return service.NewKafkaNotifier(cfg, producer, ServiceName)
}
