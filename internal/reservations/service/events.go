package service

import (
	"context"
	"time"

	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
	EventStatusChanged        = "reservation.status_changed"
)

// ReservationEvent is the payload published to the events topic. Key'd by
// reservation ID so each reservation's events stay ordered.
type ReservationEvent struct {
	ReservationID string       `json:"reservation_id"`
	RoomID        string       `json:"room_id"`
	GuestID       string       `json:"guest_id"`
	Status        model.Status `json:"status"`
	PreviousState model.Status `json:"previous_status,omitempty"`
	CheckIn       time.Time    `json:"check_in"`
	CheckOut      time.Time    `json:"check_out"`
	Total         float64      `json:"total"`
	Fee           float64      `json:"fee,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// Notifier publishes lifecycle events. Implementations must be safe to call
// concurrently; callers treat failures as non-fatal.
type Notifier interface {
	Publish(ctx context.Context, eventType string, event ReservationEvent) error
	Close() error
}

type kafkaNotifier struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaNotifier(cfg *config.Config, producer *kafka.Producer, serviceName string) Notifier {
	return &kafkaNotifier{
		producer: producer,
		source:   serviceName,
		log:      cfg.Log,
	}
}

func (n *kafkaNotifier) Publish(ctx context.Context, eventType string, event ReservationEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.ReservationID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(n.source).
		Build()

	return n.producer.Publish(ctx, msg)
}

func (n *kafkaNotifier) Close() error {
	return n.producer.Close()
}

// NopNotifier drops events; used when no broker is wired (tests, one-shot
// tools).
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, eventType string, event ReservationEvent) error {
	return nil
}

func (NopNotifier) Close() error { return nil }
