package policy

import (
	"testing"
	"time"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

func testPolicy() *Policy {
	return &Policy{
		MaxStayNights:     30,
		MaxAdvanceDays:    365,
		CancelCutoffHours: 24,
		FreeCancelHours:   48,
		LateCancelFee:     0.25,
		LastMinuteFee:     0.50,
		PendingExpiry:     24,
	}
}

func stay(t *testing.T, checkIn time.Time, nights int) model.Interval {
	t.Helper()
	iv, err := model.NewInterval(checkIn, checkIn.AddDate(0, 0, nights))
	if err != nil {
		t.Fatalf("unexpected error building interval: %v", err)
	}
	return iv
}

func sameDayStay(t *testing.T, checkIn time.Time, length time.Duration) model.Interval {
	t.Helper()
	iv, err := model.NewInterval(checkIn, checkIn.Add(length))
	if err != nil {
		t.Fatalf("unexpected error building interval: %v", err)
	}
	return iv
}

func TestValidateStay(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		stay     model.Interval
		wantCode string
	}{
		{"valid short stay", stay(t, now.AddDate(0, 0, 7), 3), ""},
		{"same-day stay", sameDayStay(t, now.Add(2*time.Hour), 8*time.Hour), ""},
		{"past check-in", stay(t, now.AddDate(0, 0, -1), 3), apperrors.CodePastDateBooking},
		{"at maximum nights", stay(t, now.AddDate(0, 0, 7), 30), ""},
		{"over maximum nights", stay(t, now.AddDate(0, 0, 7), 31), apperrors.CodeMaximumStayExceeded},
		{"at advance limit", stay(t, now.AddDate(0, 0, 365), 2), ""},
		{"over advance limit", stay(t, now.AddDate(0, 0, 366), 2), apperrors.CodeAdvanceBookingLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateStay(tt.stay, now)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func reservationAt(t *testing.T, status model.Status, checkIn time.Time, total float64) *model.Reservation {
	t.Helper()
	r := &model.Reservation{
		RoomID:  "room-1",
		GuestID: "guest-1",
		Stay:    stay(t, checkIn, 2),
		Total:   total,
	}
	r.AppendStatus(model.StatusRecord{Status: model.StatusPending, At: checkIn.AddDate(0, 0, -10)})
	if status != model.StatusPending {
		r.AppendStatus(model.StatusRecord{Status: status, At: checkIn.AddDate(0, 0, -9)})
	}
	return r
}

func TestCanCancel(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   model.Status
		checkIn  time.Time
		wantCode string
	}{
		{"pending well before check-in", model.StatusPending, now.Add(72 * time.Hour), ""},
		{"confirmed well before check-in", model.StatusConfirmed, now.Add(72 * time.Hour), ""},
		{"cancelled already", model.StatusCancelled, now.Add(72 * time.Hour), apperrors.CodeCannotCancel},
		{"completed already", model.StatusCompleted, now.Add(72 * time.Hour), apperrors.CodeCannotCancel},
		{"exactly at cutoff", model.StatusConfirmed, now.Add(24 * time.Hour), apperrors.CodeCannotCancel},
		{"inside cutoff", model.StatusConfirmed, now.Add(12 * time.Hour), apperrors.CodeCannotCancel},
		{"just outside cutoff", model.StatusConfirmed, now.Add(24*time.Hour + time.Minute), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservationAt(t, tt.status, tt.checkIn, 300)
			err := p.CanCancel(r, now)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestCancellationFee(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		checkIn time.Time
		want    float64
	}{
		{"more than 48h out is free", now.Add(49 * time.Hour), 0},
		{"exactly 48h out charges the late fee", now.Add(48 * time.Hour), 75},
		{"between 24h and 48h charges the late fee", now.Add(36 * time.Hour), 75},
		{"exactly 24h out charges the last-minute fee", now.Add(24 * time.Hour), 150},
		{"inside 24h charges the last-minute fee", now.Add(6 * time.Hour), 150},
		{"after check-in charges the last-minute fee", now.Add(-2 * time.Hour), 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservationAt(t, model.StatusConfirmed, tt.checkIn, 300)
			if got := p.CancellationFee(r, now); got != tt.want {
				t.Errorf("expected fee %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestCancellationFee_QuotableWhenNotCancellable(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Inside the cutoff the cancellation itself is rejected, but the fee is
	// still quotable.
	r := reservationAt(t, model.StatusConfirmed, now.Add(6*time.Hour), 200)
	if err := p.CanCancel(r, now); err == nil {
		t.Fatal("expected cancellation to be rejected inside the cutoff")
	}
	if got := p.CancellationFee(r, now); got != 100 {
		t.Errorf("expected fee 100, got %.2f", got)
	}
}
