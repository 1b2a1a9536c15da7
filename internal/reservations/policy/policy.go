// Package policy holds the booking-window and cancellation rules. Every rule
// is a pure function of the reservation and a supplied "now", so the service
// and the sweeper share one implementation and tests can pin the clock.
package policy

import (
	"time"

	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

type Policy struct {
	MaxStayNights     int
	MaxAdvanceDays    int
	CancelCutoffHours int
	FreeCancelHours   int
	LateCancelFee     float64
	LastMinuteFee     float64
	PendingExpiry     int
}

func FromConfig(cfg *config.Config) *Policy {
	return &Policy{
		MaxStayNights:     cfg.MaxStayNights,
		MaxAdvanceDays:    cfg.MaxAdvanceDays,
		CancelCutoffHours: cfg.CancelCutoffHours,
		FreeCancelHours:   cfg.FreeCancelHours,
		LateCancelFee:     cfg.LateCancelFee,
		LastMinuteFee:     cfg.LastMinuteFee,
		PendingExpiry:     cfg.PendingExpiry,
	}
}

// ValidateStay enforces the booking window: no past check-ins, no stays over
// the nightly cap, no reservations further out than the advance limit.
// Same-day stays (0 calendar nights) are accepted; pricing bills them at the
// 1-night minimum.
func (p *Policy) ValidateStay(stay model.Interval, now time.Time) error {
	if stay.CheckIn.Before(now) {
		return apperrors.PastDateBooking()
	}

	if stay.Nights() > p.MaxStayNights {
		return apperrors.MaximumStayExceeded(p.MaxStayNights)
	}

	if stay.CheckIn.After(now.AddDate(0, 0, p.MaxAdvanceDays)) {
		return apperrors.AdvanceBookingLimitExceeded(p.MaxAdvanceDays)
	}

	return nil
}

// CanCancel reports whether a guest-initiated cancellation is allowed: the
// reservation must still be active and check-in must be more than the cutoff
// away.
func (p *Policy) CanCancel(r *model.Reservation, now time.Time) error {
	status := r.CurrentStatus()
	if !status.Active() {
		return apperrors.CannotCancel("reservation is already " + string(status))
	}

	cutoff := time.Duration(p.CancelCutoffHours) * time.Hour
	if r.Stay.CheckIn.Sub(now) <= cutoff {
		return apperrors.CannotCancel("cancellation window has closed")
	}

	return nil
}

// CancellationFee computes the fee owed for cancelling at the given moment.
// It answers regardless of whether cancellation is currently permitted, so
// callers can quote a hypothetical fee.
func (p *Policy) CancellationFee(r *model.Reservation, now time.Time) float64 {
	until := r.Stay.CheckIn.Sub(now)

	switch {
	case until > time.Duration(p.FreeCancelHours)*time.Hour:
		return 0
	case until > time.Duration(p.CancelCutoffHours)*time.Hour:
		return r.Total * p.LateCancelFee
	default:
		return r.Total * p.LastMinuteFee
	}
}

// PendingExpiredBefore returns the check-in cutoff for the sweeper: pending
// reservations whose check-in is more than PendingExpiry hours in the past
// are considered abandoned.
func (p *Policy) PendingExpiredBefore(now time.Time) time.Time {
	return now.Add(-time.Duration(p.PendingExpiry) * time.Hour)
}
