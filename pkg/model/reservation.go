package model

import (
	"time"
)

// ExtraService is a priced line item owned by a single reservation. Lines are
// never shared between reservations; order is preserved for display only.
type ExtraService struct {
	Name        string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	UnitPrice   float64 `json:"unit_price" bson:"unit_price" validate:"min=0"`
	Description string  `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
}

// Reservation allocates one room to one guest for a stay interval.
//
// StatusHistory is append-only; Status is the cached last entry and must
// always agree with it (AppendStatus keeps both in sync). Total is the cached
// output of the pricing calculator for the current Stay/Extras and is
// recomputed on every mutation of either.
type Reservation struct {
	ID            string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID        string         `json:"room_id" bson:"room_id" validate:"required,opaque_ref"`
	GuestID       string         `json:"guest_id" bson:"guest_id" validate:"required,opaque_ref"`
	Stay          Interval       `json:"stay" bson:"stay"`
	Extras        []ExtraService `json:"extras" bson:"extras" validate:"omitempty,max=50,dive"`
	Total         float64        `json:"total" bson:"total"`
	Status        Status         `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	StatusHistory []StatusRecord `json:"status_history" bson:"status_history" validate:"required,min=1"`
	Opinions      string         `json:"opinions,omitempty" bson:"opinions,omitempty" validate:"omitempty,max=2000"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CurrentStatus derives the current state from the history. A reservation
// with an empty history is invalid; the zero Status is returned so callers
// can reject it.
func (r *Reservation) CurrentStatus() Status {
	if len(r.StatusHistory) == 0 {
		return Status("")
	}
	return r.StatusHistory[len(r.StatusHistory)-1].Status
}

// AppendStatus appends a history record and refreshes the cached Status.
// Existing records are never mutated.
func (r *Reservation) AppendStatus(rec StatusRecord) {
	r.StatusHistory = append(r.StatusHistory, rec)
	r.Status = rec.Status
}

// ReservationUpdate carries the optional fields of an update request. Nil
// means "leave unchanged".
type ReservationUpdate struct {
	CheckIn  *time.Time      `json:"check_in,omitempty"`
	CheckOut *time.Time      `json:"check_out,omitempty"`
	Extras   *[]ExtraService `json:"extras,omitempty" validate:"omitempty,max=50,dive"`
	Opinions *string         `json:"opinions,omitempty" validate:"omitempty,max=2000"`
}
