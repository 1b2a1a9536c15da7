package model

import (
	"fmt"
	"time"

	apperrors "innkeep/pkg/errors"
)

// Interval is a half-open time range [CheckIn, CheckOut) representing
// exclusive occupancy of a room. Construct through NewInterval; a zero-length
// or inverted range is never a valid stay.
type Interval struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" bson:"check_out" validate:"required"`
}

func NewInterval(checkIn, checkOut time.Time) (Interval, error) {
	if !checkOut.After(checkIn) {
		return Interval{}, apperrors.InvalidInterval(fmt.Sprintf(
			"check-out (%s) must be after check-in (%s)",
			checkOut.Format(time.RFC3339), checkIn.Format(time.RFC3339),
		))
	}
	return Interval{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// Nights counts the calendar-day boundaries crossed between check-in and
// check-out. A stay from 23:00 to 01:00 the next day is 1 night; a same-day
// stay is 0 nights.
func (i Interval) Nights() int {
	in := truncateToDay(i.CheckIn)
	out := truncateToDay(i.CheckOut)
	return int(out.Sub(in).Hours() / 24)
}

// Overlaps reports whether the two half-open ranges share at least one
// instant. Adjacent intervals (one ending exactly when the other begins) do
// not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(i.CheckOut)
}

func (i Interval) IsZero() bool {
	return i.CheckIn.IsZero() && i.CheckOut.IsZero()
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
