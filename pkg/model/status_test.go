package model

import (
	"testing"
	"time"

	apperrors "innkeep/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	legal := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, from := range all {
		for _, to := range all {
			rec, err := Transition(from, to, now)
			if legal[[2]Status{from, to}] {
				if err != nil {
					t.Errorf("%s -> %s should be legal, got %v", from, to, err)
					continue
				}
				if rec.Status != to || !rec.At.Equal(now) {
					t.Errorf("%s -> %s produced wrong record: %+v", from, to, rec)
				}
			} else {
				if !apperrors.HasCode(err, apperrors.CodeInvalidStatusTransition) {
					t.Errorf("%s -> %s should fail with INVALID_STATUS_TRANSITION, got %v", from, to, err)
				}
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusCompleted} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
}

func TestCurrentStatusAndAppend(t *testing.T) {
	var r Reservation
	if r.CurrentStatus() != Status("") {
		t.Error("empty history must derive the zero status")
	}

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.AppendStatus(StatusRecord{Status: StatusPending, At: t0})
	r.AppendStatus(StatusRecord{Status: StatusConfirmed, At: t0.Add(time.Hour)})

	if r.CurrentStatus() != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", r.CurrentStatus())
	}
	if r.Status != StatusConfirmed {
		t.Errorf("cached status out of sync: %s", r.Status)
	}
	if len(r.StatusHistory) != 2 {
		t.Errorf("expected 2 history records, got %d", len(r.StatusHistory))
	}
	if r.StatusHistory[0].Status != StatusPending {
		t.Error("earlier records must never be rewritten")
	}
}
