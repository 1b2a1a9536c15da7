package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	reserrors "innkeep/internal/reservations/errors"
	"innkeep/internal/reservations/policy"
	"innkeep/internal/reservations/repository"
	"innkeep/internal/reservations/validator"
	roomsrepo "innkeep/internal/rooms/repository"
	"innkeep/pkg/clock"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/pricing"
	"innkeep/pkg/sanitizer"
)

type SweepResult struct {
	ExpiredPending     int `json:"expired_pending"`
	CompletedConfirmed int `json:"completed_confirmed"`
}

type Statistics struct {
	Total     int64   `json:"total"`
	Pending   int64   `json:"pending"`
	Confirmed int64   `json:"confirmed"`
	Cancelled int64   `json:"cancelled"`
	Completed int64   `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	ListByGuest(ctx context.Context, guestID string, status *model.Status, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error)
	Confirm(ctx context.Context, id string) (*model.Reservation, error)
	Complete(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) (*model.Reservation, float64, error)
	QuoteCancellationFee(ctx context.Context, id string) (float64, error)
	AddExtra(ctx context.Context, id string, extra model.ExtraService) (*model.Reservation, error)
	RemoveExtra(ctx context.Context, id string, index int) (*model.Reservation, error)
	IsAvailable(ctx context.Context, roomID string, stay model.Interval) (bool, error)
	ConflictingReservations(ctx context.Context, roomID string, stay model.Interval) ([]*model.Reservation, error)
	AvailableRooms(ctx context.Context, stay model.Interval) ([]*model.Room, error)
	OccupancyRate(ctx context.Context, stay model.Interval) (float64, error)
	Stats(ctx context.Context) (*Statistics, error)
	SweepExpired(ctx context.Context) (*SweepResult, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.RoomLockRepository
	rooms     roomsrepo.RoomCatalog
	validator *validator.ReservationValidator
	policy    *policy.Policy
	notifier  Notifier
	clock     clock.Clock
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.RoomLockRepository,
	rooms roomsrepo.RoomCatalog,
	validator *validator.ReservationValidator,
	pol *policy.Policy,
	notifier Notifier,
	clk clock.Clock,
	cfg *config.Config,
) ReservationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if clk == nil {
		clk = clock.System()
	}
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		validator: validator,
		policy:    pol,
		notifier:  notifier,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	now := s.clock.Now()

	s.sanitize(reservation)

	if err := s.policy.ValidateStay(reservation.Stay, now); err != nil {
		return err
	}

	room, err := s.lookupRoom(ctx, reservation.RoomID)
	if err != nil {
		return err
	}

	total, err := pricing.ForStay(room.NightlyRate, reservation.Extras, reservation.Stay)
	if err != nil {
		return err
	}
	reservation.Total = total
	reservation.CreatedAt = now
	reservation.StatusHistory = nil
	reservation.AppendStatus(model.StatusRecord{Status: model.StatusPending, At: now})

	if err := s.validate(reservation); err != nil {
		return err
	}

	// Advisory lock serializes the availability check and the insert for this
	// room; concurrent writers for other rooms proceed unhindered.
	owner := uuid.New().String()
	if _, err := s.lockRepo.Acquire(ctx, reservation.RoomID, owner); err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, reservation.RoomID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room_id", reservation.RoomID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyAvailability(sessCtx, reservation.RoomID, reservation.Stay, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			if apperrors.IsAppError(err) {
				return err
			}
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation", "room_id", reservation.RoomID, "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"guest_id", reservation.GuestID,
		"check_in", reservation.Stay.CheckIn,
		"total", reservation.Total,
	)
	s.notify(ctx, EventReservationCreated, reservation, model.Status(""), 0)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return reservation, nil
}

func (s *reservationService) ListByGuest(ctx context.Context, guestID string, status *model.Status, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if guestID == "" {
		return nil, 0, apperrors.InvalidInput("Guest ID cannot be empty")
	}
	if status != nil && !status.Valid() {
		return nil, 0, apperrors.InvalidInput("Unknown status filter: " + string(*status))
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByGuest(ctx, guestID, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count guest reservations", "guest_id", guestID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByGuest(ctx, guestID, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list guest reservations", "guest_id", guestID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// Update reworks a reservation that is still pending: stay dates, extras and
// opinions may change. The updated reservation re-enters the pending state
// with a fresh history record and a recomputed total.
func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if existing.CurrentStatus() != model.StatusPending {
		return nil, apperrors.InvalidReservationStatus(string(existing.CurrentStatus()))
	}

	now := s.clock.Now()
	merged, err := s.mergeUpdates(existing, updates)
	if err != nil {
		return nil, err
	}

	if err := s.policy.ValidateStay(merged.Stay, now); err != nil {
		return nil, err
	}

	room, err := s.lookupRoom(ctx, merged.RoomID)
	if err != nil {
		return nil, err
	}
	total, err := pricing.ForStay(room.NightlyRate, merged.Extras, merged.Stay)
	if err != nil {
		return nil, err
	}
	merged.Total = total
	merged.AppendStatus(model.StatusRecord{Status: model.StatusPending, At: now})

	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	owner := uuid.New().String()
	if _, err := s.lockRepo.Acquire(ctx, merged.RoomID, owner); err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, merged.RoomID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room_id", merged.RoomID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyAvailability(sessCtx, merged.RoomID, merged.Stay, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			if apperrors.IsAppError(err) {
				return err
			}
			return apperrors.Internal("Failed to update reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation updated successfully", "id", id, "total", merged.Total)
	s.notify(ctx, EventReservationUpdated, merged, model.StatusPending, 0)
	return merged, nil
}

func (s *reservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusConfirmed)
}

func (s *reservationService) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCompleted)
}

func (s *reservationService) transition(ctx context.Context, id string, target model.Status) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	from := reservation.CurrentStatus()
	rec, err := model.Transition(from, target, s.clock.Now())
	if err != nil {
		return nil, err
	}
	reservation.AppendStatus(rec)

	if _, err := s.repo.Update(ctx, id, reservation); err != nil {
		s.cfg.Log.Error("Failed to persist status transition", "id", id, "target", target, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to update reservation status", err)
	}

	s.cfg.Log.Info("Reservation status changed", "id", id, "from", from, "to", target)
	s.notify(ctx, EventStatusChanged, reservation, from, 0)
	return reservation, nil
}

func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, float64, error) {
	if id == "" {
		return nil, 0, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, 0, s.mapLookupError(err, id)
	}

	now := s.clock.Now()
	if err := s.policy.CanCancel(reservation, now); err != nil {
		return nil, 0, err
	}

	fee := s.policy.CancellationFee(reservation, now)

	from := reservation.CurrentStatus()
	rec, err := model.Transition(from, model.StatusCancelled, now)
	if err != nil {
		return nil, 0, err
	}
	reservation.AppendStatus(rec)

	if _, err := s.repo.Update(ctx, id, reservation); err != nil {
		s.cfg.Log.Error("Failed to persist cancellation", "id", id, "error", err)
		if apperrors.IsAppError(err) {
			return nil, 0, err
		}
		return nil, 0, apperrors.Internal("Failed to cancel reservation", err)
	}

	s.cfg.Log.Info("Reservation cancelled", "id", id, "fee", fee)
	s.notify(ctx, EventReservationCancelled, reservation, from, fee)
	return reservation, fee, nil
}

func (s *reservationService) QuoteCancellationFee(ctx context.Context, id string) (float64, error) {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.policy.CancellationFee(reservation, s.clock.Now()), nil
}

func (s *reservationService) AddExtra(ctx context.Context, id string, extra model.ExtraService) (*model.Reservation, error) {
	extra.Name = sanitizer.SanitizeLabel(extra.Name)
	extra.Description = sanitizer.SanitizeFreeText(extra.Description)
	if err := s.validator.ValidateExtra(&extra); err != nil {
		return nil, apperrors.Validation("Invalid extra service", map[string]any{"error": err.Error()})
	}

	return s.mutateExtras(ctx, id, func(extras []model.ExtraService) ([]model.ExtraService, error) {
		return append(extras, extra), nil
	})
}

func (s *reservationService) RemoveExtra(ctx context.Context, id string, index int) (*model.Reservation, error) {
	return s.mutateExtras(ctx, id, func(extras []model.ExtraService) ([]model.ExtraService, error) {
		if index < 0 || index >= len(extras) {
			return nil, apperrors.ExtraServiceNotFound(index)
		}
		return append(extras[:index], extras[index+1:]...), nil
	})
}

// mutateExtras applies fn to the extras of an active reservation and
// repersists it with a recomputed total. Unlike date updates, extras may
// change after confirmation; only terminal reservations are frozen.
func (s *reservationService) mutateExtras(ctx context.Context, id string, fn func([]model.ExtraService) ([]model.ExtraService, error)) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if !reservation.CurrentStatus().Active() {
		return nil, apperrors.InvalidReservationStatus(string(reservation.CurrentStatus()))
	}

	extras, err := fn(reservation.Extras)
	if err != nil {
		return nil, err
	}
	reservation.Extras = extras

	room, err := s.lookupRoom(ctx, reservation.RoomID)
	if err != nil {
		return nil, err
	}
	total, err := pricing.ForStay(room.NightlyRate, reservation.Extras, reservation.Stay)
	if err != nil {
		return nil, err
	}
	reservation.Total = total

	if _, err := s.repo.Update(ctx, id, reservation); err != nil {
		s.cfg.Log.Error("Failed to persist extras change", "id", id, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to update reservation extras", err)
	}

	s.cfg.Log.Info("Reservation extras updated", "id", id, "extras", len(reservation.Extras), "total", reservation.Total)
	return reservation, nil
}

// IsAvailable reports whether the room is free of active reservations
// overlapping the stay. It is a point-in-time read; Create re-checks under
// the room lock before writing.
func (s *reservationService) IsAvailable(ctx context.Context, roomID string, stay model.Interval) (bool, error) {
	if roomID == "" {
		return false, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if stay.IsZero() {
		return false, apperrors.InvalidInterval("check_in and check_out are required")
	}

	err := s.verifyAvailability(ctx, roomID, stay, "")
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeRoomNotAvailable) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ConflictingReservations returns the active reservations holding the room
// over any part of the stay.
func (s *reservationService) ConflictingReservations(ctx context.Context, roomID string, stay model.Interval) ([]*model.Reservation, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if stay.IsZero() {
		return nil, apperrors.InvalidInterval("check_in and check_out are required")
	}

	active, err := s.repo.FindActiveByRoom(ctx, roomID, "")
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to find conflicting reservations", err)
	}

	var conflicts []*model.Reservation
	for _, other := range active {
		if stay.Overlaps(other.Stay) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts, nil
}

// AvailableRooms returns the sellable rooms with no active reservation
// overlapping the interval.
func (s *reservationService) AvailableRooms(ctx context.Context, stay model.Interval) ([]*model.Room, error) {
	if stay.IsZero() {
		return nil, apperrors.InvalidInterval("check_in and check_out are required")
	}

	rooms, err := s.rooms.FindSellable(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list rooms", err)
	}

	active, err := s.repo.FindActiveOverlapping(ctx, stay)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to find overlapping reservations", err)
	}

	occupied := make(map[string]struct{}, len(active))
	for _, r := range active {
		occupied[r.RoomID] = struct{}{}
	}

	available := make([]*model.Room, 0, len(rooms))
	for _, room := range rooms {
		if _, taken := occupied[room.ID]; !taken {
			available = append(available, room)
		}
	}
	return available, nil
}

// OccupancyRate returns the fraction of sellable rooms holding a confirmed
// reservation overlapping the interval.
func (s *reservationService) OccupancyRate(ctx context.Context, stay model.Interval) (float64, error) {
	if stay.IsZero() {
		return 0, apperrors.InvalidInterval("check_in and check_out are required")
	}

	rooms, err := s.rooms.FindSellable(ctx)
	if err != nil {
		return 0, apperrors.Internal("Failed to list rooms", err)
	}
	if len(rooms) == 0 {
		return 0, nil
	}

	reservations, err := s.repo.FindConfirmedOverlapping(ctx, "", stay)
	if err != nil {
		return 0, apperrors.Internal("Failed to find overlapping reservations", err)
	}

	occupied := make(map[string]struct{})
	for _, r := range reservations {
		occupied[r.RoomID] = struct{}{}
	}

	return float64(len(occupied)) / float64(len(rooms)), nil
}

func (s *reservationService) Stats(ctx context.Context) (*Statistics, error) {
	statuses := []model.Status{
		model.StatusPending,
		model.StatusConfirmed,
		model.StatusCancelled,
		model.StatusCompleted,
	}

	stats := &Statistics{}
	counts := make([]int64, len(statuses))
	errs := make([]error, len(statuses)+2)

	var wg sync.WaitGroup
	wg.Add(len(statuses) + 2)

	go func() {
		defer wg.Done()
		stats.Total, errs[len(statuses)] = s.repo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.Revenue, errs[len(statuses)+1] = s.repo.SumTotalsByStatus(ctx,
			[]model.Status{model.StatusConfirmed, model.StatusCompleted})
	}()
	for i, status := range statuses {
		go func(i int, status model.Status) {
			defer wg.Done()
			counts[i], errs[i] = s.repo.CountByStatus(ctx, status)
		}(i, status)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to compute reservation statistics", "error", err)
			return nil, apperrors.Internal("Failed to compute statistics", err)
		}
	}

	stats.Pending = counts[0]
	stats.Confirmed = counts[1]
	stats.Cancelled = counts[2]
	stats.Completed = counts[3]
	return stats, nil
}

// SweepExpired cancels pending reservations whose check-in has been missed
// for longer than the expiry window and completes confirmed reservations
// whose stay has ended. Both queries filter on the cached status field, so
// re-running the sweep finds nothing left to do.
func (s *reservationService) SweepExpired(ctx context.Context) (*SweepResult, error) {
	now := s.clock.Now()
	result := &SweepResult{}

	expired, err := s.repo.FindPendingCheckInBefore(ctx, s.policy.PendingExpiredBefore(now), s.cfg.SweepBatchSize)
	if err != nil {
		return nil, apperrors.Internal("Failed to find expired pending reservations", err)
	}
	for _, reservation := range expired {
		if err := s.sweepTransition(ctx, reservation, model.StatusCancelled, EventReservationCancelled); err != nil {
			continue
		}
		result.ExpiredPending++
	}

	ended, err := s.repo.FindConfirmedCheckOutBefore(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		return nil, apperrors.Internal("Failed to find ended reservations", err)
	}
	for _, reservation := range ended {
		if err := s.sweepTransition(ctx, reservation, model.StatusCompleted, EventStatusChanged); err != nil {
			continue
		}
		result.CompletedConfirmed++
	}

	s.cfg.Log.Info("Sweep finished",
		"expired_pending", result.ExpiredPending,
		"completed_confirmed", result.CompletedConfirmed,
	)
	return result, nil
}

func (s *reservationService) sweepTransition(ctx context.Context, reservation *model.Reservation, target model.Status, eventType string) error {
	from := reservation.CurrentStatus()
	rec, err := model.Transition(from, target, s.clock.Now())
	if err != nil {
		s.cfg.Log.Warn("Skipping reservation with unexpected status", "id", reservation.ID, "status", from)
		return err
	}
	reservation.AppendStatus(rec)

	if _, err := s.repo.Update(ctx, reservation.ID, reservation); err != nil {
		s.cfg.Log.Error("Failed to persist sweep transition", "id", reservation.ID, "target", target, "error", err)
		return err
	}

	s.notify(ctx, eventType, reservation, from, 0)
	return nil
}

// verifyAvailability rejects with RoomNotAvailable when any active
// reservation for the room overlaps the requested stay.
func (s *reservationService) verifyAvailability(ctx context.Context, roomID string, stay model.Interval, excludeID string) error {
	active, err := s.repo.FindActiveByRoom(ctx, roomID, excludeID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to check room availability", err)
	}

	for _, other := range active {
		if stay.Overlaps(other.Stay) {
			return apperrors.RoomNotAvailable(
				roomID,
				stay.CheckIn.Format("2006-01-02"),
				stay.CheckOut.Format("2006-01-02"),
			)
		}
	}
	return nil
}

func (s *reservationService) lookupRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, reserrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to look up room", err)
	}
	return room, nil
}

func (s *reservationService) mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate) (*model.Reservation, error) {
	merged := *existing
	merged.StatusHistory = append([]model.StatusRecord(nil), existing.StatusHistory...)
	merged.Extras = append([]model.ExtraService(nil), existing.Extras...)

	checkIn := merged.Stay.CheckIn
	checkOut := merged.Stay.CheckOut
	if updates.CheckIn != nil {
		checkIn = *updates.CheckIn
	}
	if updates.CheckOut != nil {
		checkOut = *updates.CheckOut
	}
	stay, err := model.NewInterval(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	merged.Stay = stay

	if updates.Extras != nil {
		merged.Extras = append([]model.ExtraService(nil), (*updates.Extras)...)
	}
	if updates.Opinions != nil {
		merged.Opinions = *updates.Opinions
	}

	return &merged, nil
}

func (s *reservationService) sanitize(reservation *model.Reservation) {
	for i := range reservation.Extras {
		reservation.Extras[i].Name = sanitizer.SanitizeLabel(reservation.Extras[i].Name)
		reservation.Extras[i].Description = sanitizer.SanitizeFreeText(reservation.Extras[i].Description)
	}
	reservation.Opinions = sanitizer.SanitizeFreeText(reservation.Opinions)
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Invalid reservation input", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) mapLookupError(err error, id string) error {
	if errors.Is(err, reserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Reservation", id)
	}
	if errors.Is(err, reserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid reservation ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve reservation", err)
}

// notify publishes the lifecycle event; delivery failures are logged and
// never fail the triggering operation.
func (s *reservationService) notify(ctx context.Context, eventType string, r *model.Reservation, previous model.Status, fee float64) {
	event := ReservationEvent{
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		GuestID:       r.GuestID,
		Status:        r.CurrentStatus(),
		PreviousState: previous,
		CheckIn:       r.Stay.CheckIn,
		CheckOut:      r.Stay.CheckOut,
		Total:         r.Total,
		Fee:           fee,
		OccurredAt:    s.clock.Now(),
	}

	if err := s.notifier.Publish(ctx, eventType, event); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", r.ID,
			"error", err,
		)
	}
}
