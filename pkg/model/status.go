package model

import (
	"time"

	apperrors "innkeep/pkg/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// StatusRecord is one entry of a reservation's append-only status history.
type StatusRecord struct {
	Status Status    `json:"status" bson:"status"`
	At     time.Time `json:"at" bson:"at"`
}

var legalTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// Active reports whether the status counts against room availability.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether the status has no outgoing legal transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range legalTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Transition validates current -> target against the legal-transition table
// and returns the history record to append. It never touches storage; the
// caller persists the record.
func Transition(current, target Status, now time.Time) (StatusRecord, error) {
	if !current.CanTransitionTo(target) {
		return StatusRecord{}, apperrors.InvalidStatusTransition(string(current), string(target))
	}
	return StatusRecord{Status: target, At: now}, nil
}
