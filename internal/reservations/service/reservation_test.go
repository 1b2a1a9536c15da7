package service

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reserrors "innkeep/internal/reservations/errors"
	"innkeep/internal/reservations/policy"
	"innkeep/internal/reservations/validator"
	"innkeep/pkg/clock"
	"innkeep/pkg/config"
	mongotx "innkeep/pkg/db/mongo"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// In-memory repository with the same contract as the Mongo implementation,
// including transaction passthrough, so service behavior under contention can
// be exercised without a database.
type inMemoryReservationRepo struct {
	mu   sync.Mutex
	docs map[string]*model.Reservation
}

func newInMemoryReservationRepo() *inMemoryReservationRepo {
	return &inMemoryReservationRepo{docs: make(map[string]*model.Reservation)}
}

func cloneReservation(r *model.Reservation) *model.Reservation {
	c := *r
	c.StatusHistory = append([]model.StatusRecord(nil), r.StatusHistory...)
	c.Extras = append([]model.ExtraService(nil), r.Extras...)
	return &c
}

func (m *inMemoryReservationRepo) Create(ctx context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = primitive.NewObjectID().Hex()
	m.docs[r.ID] = cloneReservation(r)
	return nil
}

func (m *inMemoryReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.docs[id]
	if !ok {
		return nil, reserrors.ErrNotFound
	}
	return cloneReservation(r), nil
}

func (m *inMemoryReservationRepo) Update(ctx context.Context, id string, r *model.Reservation) (*mongo.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return nil, reserrors.ErrNotFound
	}
	m.docs[id] = cloneReservation(r)
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *inMemoryReservationRepo) FindActiveByRoom(ctx context.Context, roomID string, excludeID string) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for id, r := range m.docs {
		if id == excludeID || r.RoomID != roomID {
			continue
		}
		if r.Status == model.StatusPending || r.Status == model.StatusConfirmed {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *inMemoryReservationRepo) FindByGuest(ctx context.Context, guestID string, status *model.Status, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.docs {
		if r.GuestID != guestID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, cloneReservation(r))
	}
	return out, nil
}

func (m *inMemoryReservationRepo) CountByGuest(ctx context.Context, guestID string, status *model.Status) (int64, error) {
	rs, _ := m.FindByGuest(ctx, guestID, status, 0, 0)
	return int64(len(rs)), nil
}

func (m *inMemoryReservationRepo) FindPendingCheckInBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.docs {
		if r.Status == model.StatusPending && r.Stay.CheckIn.Before(cutoff) {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *inMemoryReservationRepo) FindConfirmedCheckOutBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.docs {
		if r.Status == model.StatusConfirmed && r.Stay.CheckOut.Before(cutoff) {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *inMemoryReservationRepo) FindConfirmedOverlapping(ctx context.Context, roomID string, stay model.Interval) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.docs {
		if r.Status != model.StatusConfirmed {
			continue
		}
		if roomID != "" && r.RoomID != roomID {
			continue
		}
		if r.Stay.Overlaps(stay) {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *inMemoryReservationRepo) FindActiveOverlapping(ctx context.Context, stay model.Interval) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.docs {
		if (r.Status == model.StatusPending || r.Status == model.StatusConfirmed) && r.Stay.Overlaps(stay) {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (m *inMemoryReservationRepo) SumTotalsByStatus(ctx context.Context, statuses []model.Status) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, r := range m.docs {
		for _, status := range statuses {
			if r.Status == status {
				sum += r.Total
				break
			}
		}
	}
	return sum, nil
}

func (m *inMemoryReservationRepo) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.docs {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *inMemoryReservationRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.docs)), nil
}

func (m *inMemoryReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// In-memory advisory lock with the same acquire-retry semantics as the Mongo
// implementation.
type inMemoryLockRepo struct {
	mu   sync.Mutex
	held map[string]string
}

func newInMemoryLockRepo() *inMemoryLockRepo {
	return &inMemoryLockRepo{held: make(map[string]string)}
}

func (l *inMemoryLockRepo) Acquire(ctx context.Context, roomID string, owner string) (*model.RoomLock, error) {
	for attempt := 0; attempt < 200; attempt++ {
		l.mu.Lock()
		if _, taken := l.held[roomID]; !taken {
			l.held[roomID] = owner
			l.mu.Unlock()
			return &model.RoomLock{ID: roomID, Owner: owner}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, apperrors.Timeout("lock acquisition cancelled for room " + roomID)
		case <-time.After(2 * time.Millisecond):
		}
	}
	return nil, apperrors.StorageConflict("room " + roomID + " is locked by a concurrent request")
}

func (l *inMemoryLockRepo) Release(ctx context.Context, roomID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, roomID)
	return nil
}

type stubRoomCatalog struct {
	rate     float64
	sellable int
}

func (s *stubRoomCatalog) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "missing" {
		return nil, reserrors.ErrRoomNotFound
	}
	return &model.Room{ID: id, Number: 101, Type: model.RoomStandard, NightlyRate: s.rate, Capacity: 2, Availability: true}, nil
}

func (s *stubRoomCatalog) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	return nil, nil
}

func (s *stubRoomCatalog) FindSellable(ctx context.Context) ([]*model.Room, error) {
	rooms := make([]*model.Room, s.sellable)
	for i := range rooms {
		rooms[i] = &model.Room{ID: "room-" + strconv.Itoa(i+1), Number: i + 1, NightlyRate: s.rate}
	}
	return rooms, nil
}

func (s *stubRoomCatalog) Count(ctx context.Context) (int64, error) {
	return int64(s.sellable), nil
}

type capturingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *capturingNotifier) Publish(ctx context.Context, eventType string, event ReservationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
	return nil
}

func (n *capturingNotifier) Close() error { return nil }

func (n *capturingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == eventType {
			c++
		}
	}
	return c
}

type testEnv struct {
	svc      ReservationService
	repo     *inMemoryReservationRepo
	notifier *capturingNotifier
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.FormatJSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:            log,
		SweepBatchSize: 100,
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newInMemoryReservationRepo()
	notifier := &capturingNotifier{}

	svc := NewReservationService(
		repo,
		newInMemoryLockRepo(),
		&stubRoomCatalog{rate: 100, sellable: 4},
		validator.NewReservationValidator(log),
		&policy.Policy{
			MaxStayNights:     30,
			MaxAdvanceDays:    365,
			CancelCutoffHours: 24,
			FreeCancelHours:   48,
			LateCancelFee:     0.25,
			LastMinuteFee:     0.50,
			PendingExpiry:     24,
		},
		notifier,
		clock.Fixed{T: now},
		cfg,
	)

	return &testEnv{svc: svc, repo: repo, notifier: notifier, now: now}
}

func (e *testEnv) newReservation(t *testing.T, roomID string, daysAhead, nights int) *model.Reservation {
	t.Helper()
	checkIn := e.now.AddDate(0, 0, daysAhead)
	stay, err := model.NewInterval(checkIn, checkIn.AddDate(0, 0, nights))
	if err != nil {
		t.Fatalf("unexpected error building stay: %v", err)
	}
	return &model.Reservation{
		RoomID:  roomID,
		GuestID: "guest-1",
		Stay:    stay,
	}
}

func TestCreate_PricesAndStartsPending(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	r.Extras = []model.ExtraService{{Name: "breakfast", UnitPrice: 15}}

	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.ID == "" {
		t.Error("expected an assigned ID")
	}
	if r.Total != 315 {
		t.Errorf("expected total 315 (3 nights x 100 + 15), got %.2f", r.Total)
	}
	if r.CurrentStatus() != model.StatusPending {
		t.Errorf("new reservation must be pending, got %s", r.CurrentStatus())
	}
	if len(r.StatusHistory) != 1 {
		t.Errorf("expected a single history record, got %d", len(r.StatusHistory))
	}
	if env.notifier.count(EventReservationCreated) != 1 {
		t.Error("expected a created event")
	}
	if !r.CreatedAt.Equal(env.now) {
		t.Errorf("expected creation stamped from the injected clock, got %s", r.CreatedAt)
	}
}

func TestCreate_SameDayStayChargesMinimumNight(t *testing.T) {
	env := newTestEnv(t)

	checkIn := env.now.Add(3 * time.Hour)
	stay, err := model.NewInterval(checkIn, checkIn.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error building stay: %v", err)
	}
	r := &model.Reservation{RoomID: "room-1", GuestID: "guest-1", Stay: stay}

	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Total != 100 {
		t.Errorf("same-day stay must be billed one night, got %.2f", r.Total)
	}
}

func TestCreate_RejectsOverlap(t *testing.T) {
	env := newTestEnv(t)

	first := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Overlaps the middle of the first stay.
	second := env.newReservation(t, "room-1", 8, 3)
	err := env.svc.Create(context.Background(), second)
	if !apperrors.HasCode(err, apperrors.CodeRoomNotAvailable) {
		t.Fatalf("expected ROOM_NOT_AVAILABLE, got %v", err)
	}

	// A different room with the same dates is unaffected.
	other := env.newReservation(t, "room-2", 8, 3)
	if err := env.svc.Create(context.Background(), other); err != nil {
		t.Errorf("other room should be available: %v", err)
	}
}

func TestCreate_AdjacentStaysDoNotConflict(t *testing.T) {
	env := newTestEnv(t)

	first := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Checks in on the first stay's check-out day.
	backToBack := env.newReservation(t, "room-1", 10, 2)
	if err := env.svc.Create(context.Background(), backToBack); err != nil {
		t.Errorf("back-to-back stay should be allowed: %v", err)
	}
}

func TestCreate_PolicyRejections(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		daysOut  int
		nights   int
		wantCode string
	}{
		{"past check-in", -2, 3, apperrors.CodePastDateBooking},
		{"too long", 7, 31, apperrors.CodeMaximumStayExceeded},
		{"too far ahead", 400, 3, apperrors.CodeAdvanceBookingLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.Create(context.Background(), env.newReservation(t, "room-1", tt.daysOut, tt.nights))
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestCreate_ConcurrentSameRoom(t *testing.T) {
	env := newTestEnv(t)

	const writers = 2
	reservations := make([]*model.Reservation, writers)
	for i := range reservations {
		reservations[i] = env.newReservation(t, "room-1", 7, 3)
	}

	errs := make([]error, writers)
	var wg sync.WaitGroup
	wg.Add(writers)

	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = env.svc.Create(context.Background(), reservations[i])
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperrors.HasCode(err, apperrors.CodeRoomNotAvailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 1 || unavailable != 1 {
		t.Errorf("expected exactly one winner and one ROOM_NOT_AVAILABLE, got ok=%d unavailable=%d", ok, unavailable)
	}

	count, _ := env.repo.Count(context.Background())
	if count != 1 {
		t.Errorf("expected a single stored reservation, got %d", count)
	}
}

// Many concurrent writers with randomized, mutually overlapping intervals on
// one room: whatever subset wins must be pairwise non-overlapping, and every
// loser must have conflicted with a winner.
func TestCreate_ConcurrentRandomIntervals(t *testing.T) {
	env := newTestEnv(t)

	rng := rand.New(rand.NewSource(42))
	const writers = 12
	reservations := make([]*model.Reservation, writers)
	for i := range reservations {
		daysAhead := 7 + rng.Intn(6)
		nights := 1 + rng.Intn(4)
		reservations[i] = env.newReservation(t, "room-1", daysAhead, nights)
	}

	errs := make([]error, writers)
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = env.svc.Create(context.Background(), reservations[i])
		}(i)
	}
	wg.Wait()

	var winners []*model.Reservation
	for i, err := range errs {
		switch {
		case err == nil:
			winners = append(winners, reservations[i])
		case apperrors.HasCode(err, apperrors.CodeRoomNotAvailable):
		default:
			t.Fatalf("unexpected error for writer %d: %v", i, err)
		}
	}
	if len(winners) == 0 {
		t.Fatal("expected at least one create to win")
	}

	for i := 0; i < len(winners); i++ {
		for j := i + 1; j < len(winners); j++ {
			if winners[i].Stay.Overlaps(winners[j].Stay) {
				t.Errorf("stored reservations %s and %s overlap", winners[i].ID, winners[j].ID)
			}
		}
	}

	// A rejection is only legitimate if the interval actually conflicted
	// with something that made it in.
	for i, err := range errs {
		if !apperrors.HasCode(err, apperrors.CodeRoomNotAvailable) {
			continue
		}
		conflicted := false
		for _, w := range winners {
			if reservations[i].Stay.Overlaps(w.Stay) {
				conflicted = true
				break
			}
		}
		if !conflicted {
			t.Errorf("writer %d was rejected without overlapping any stored reservation", i)
		}
	}

	count, _ := env.repo.Count(context.Background())
	if int(count) != len(winners) {
		t.Errorf("expected %d stored reservations, got %d", len(winners), count)
	}
}

func TestUpdate_PendingOnly(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.Confirm(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newOut := env.now.AddDate(0, 0, 12)
	_, err := env.svc.Update(context.Background(), r.ID, &model.ReservationUpdate{CheckOut: &newOut})
	if !apperrors.HasCode(err, apperrors.CodeInvalidReservationStatus) {
		t.Errorf("expected INVALID_RESERVATION_STATUS, got %v", err)
	}
}

func TestUpdate_ReappendsPendingAndReprices(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newOut := env.now.AddDate(0, 0, 12) // 5 nights
	updated, err := env.svc.Update(context.Background(), r.ID, &model.ReservationUpdate{CheckOut: &newOut})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Total != 500 {
		t.Errorf("expected repriced total 500, got %.2f", updated.Total)
	}
	if len(updated.StatusHistory) != 2 {
		t.Errorf("expected a fresh pending record appended, got %d records", len(updated.StatusHistory))
	}
	if updated.CurrentStatus() != model.StatusPending {
		t.Errorf("updated reservation must re-enter pending, got %s", updated.CurrentStatus())
	}
}

func TestCancel_FeeTiers(t *testing.T) {
	tests := []struct {
		name     string
		hoursOut int
		wantErr  bool
		wantFee  float64
	}{
		{"free cancellation", 72, false, 0},
		{"late cancellation", 36, false, 75},
		{"inside cutoff rejected", 12, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			checkIn := env.now.Add(time.Duration(tt.hoursOut) * time.Hour)
			stay, _ := model.NewInterval(checkIn, checkIn.AddDate(0, 0, 3))
			r := &model.Reservation{RoomID: "room-1", GuestID: "guest-1", Stay: stay}
			if err := env.svc.Create(context.Background(), r); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			cancelled, fee, err := env.svc.Cancel(context.Background(), r.ID)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeCannotCancel) {
					t.Errorf("expected RESERVATION_CANNOT_BE_CANCELLED, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fee != tt.wantFee {
				t.Errorf("expected fee %.2f, got %.2f", tt.wantFee, fee)
			}
			if cancelled.CurrentStatus() != model.StatusCancelled {
				t.Errorf("expected cancelled, got %s", cancelled.CurrentStatus())
			}
		})
	}
}

func TestCancel_FreesTheRoom(t *testing.T) {
	env := newTestEnv(t)

	first := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := env.svc.Cancel(context.Background(), first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), second); err != nil {
		t.Errorf("room should be available after cancellation: %v", err)
	}
}

func TestExtras_AddRemoveReprices(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	withExtra, err := env.svc.AddExtra(context.Background(), r.ID, model.ExtraService{Name: "spa", UnitPrice: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withExtra.Total != 340 {
		t.Errorf("expected total 340, got %.2f", withExtra.Total)
	}

	without, err := env.svc.RemoveExtra(context.Background(), r.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if without.Total != 300 {
		t.Errorf("expected total 300 after removal, got %.2f", without.Total)
	}

	_, err = env.svc.RemoveExtra(context.Background(), r.ID, 5)
	if !apperrors.HasCode(err, apperrors.CodeExtraServiceNotFound) {
		t.Errorf("expected EXTRA_SERVICE_NOT_FOUND, got %v", err)
	}
}

func TestExtras_MutableWhileConfirmed(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.Confirm(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	withExtra, err := env.svc.AddExtra(context.Background(), r.ID, model.ExtraService{Name: "late checkout", UnitPrice: 25})
	if err != nil {
		t.Fatalf("extras must stay mutable after confirmation: %v", err)
	}
	if withExtra.Total != 325 {
		t.Errorf("expected repriced total 325, got %.2f", withExtra.Total)
	}
	if withExtra.CurrentStatus() != model.StatusConfirmed {
		t.Errorf("extras mutation must not change status, got %s", withExtra.CurrentStatus())
	}

	without, err := env.svc.RemoveExtra(context.Background(), r.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if without.Total != 300 {
		t.Errorf("expected total 300 after removal, got %.2f", without.Total)
	}
}

func TestExtras_FrozenOnceTerminal(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := env.svc.Cancel(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := env.svc.AddExtra(context.Background(), r.ID, model.ExtraService{Name: "spa", UnitPrice: 40})
	if !apperrors.HasCode(err, apperrors.CodeInvalidReservationStatus) {
		t.Errorf("expected INVALID_RESERVATION_STATUS, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	available, err := env.svc.IsAvailable(context.Background(), "room-1", r.Stay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("room with an active reservation must not be available")
	}

	available, err = env.svc.IsAvailable(context.Background(), "room-2", r.Stay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("untouched room must be available")
	}
}

func TestSweepExpired(t *testing.T) {
	env := newTestEnv(t)

	// Pending with a check-in 30h in the past: abandoned.
	pastIn := env.now.Add(-30 * time.Hour)
	stay, _ := model.NewInterval(pastIn, pastIn.AddDate(0, 0, 3))
	abandoned := &model.Reservation{RoomID: "room-1", GuestID: "guest-1", Stay: stay}
	abandoned.AppendStatus(model.StatusRecord{Status: model.StatusPending, At: pastIn.Add(-24 * time.Hour)})
	_ = env.repo.Create(context.Background(), abandoned)

	// Confirmed with a check-out in the past: finished.
	pastOut := env.now.Add(-2 * time.Hour)
	stay2, _ := model.NewInterval(pastOut.AddDate(0, 0, -3), pastOut)
	finished := &model.Reservation{RoomID: "room-2", GuestID: "guest-2", Stay: stay2}
	finished.AppendStatus(model.StatusRecord{Status: model.StatusPending, At: pastOut.AddDate(0, 0, -5)})
	finished.AppendStatus(model.StatusRecord{Status: model.StatusConfirmed, At: pastOut.AddDate(0, 0, -4)})
	_ = env.repo.Create(context.Background(), finished)

	// Pending inside the grace window: untouched.
	recentIn := env.now.Add(-2 * time.Hour)
	stay3, _ := model.NewInterval(recentIn, recentIn.AddDate(0, 0, 2))
	fresh := &model.Reservation{RoomID: "room-3", GuestID: "guest-3", Stay: stay3}
	fresh.AppendStatus(model.StatusRecord{Status: model.StatusPending, At: recentIn.Add(-time.Hour)})
	_ = env.repo.Create(context.Background(), fresh)

	result, err := env.svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExpiredPending != 1 || result.CompletedConfirmed != 1 {
		t.Errorf("expected 1 expiry and 1 completion, got %+v", result)
	}

	got, _ := env.repo.FindByID(context.Background(), abandoned.ID)
	if got.CurrentStatus() != model.StatusCancelled {
		t.Errorf("abandoned pending should be cancelled, got %s", got.CurrentStatus())
	}
	got, _ = env.repo.FindByID(context.Background(), finished.ID)
	if got.CurrentStatus() != model.StatusCompleted {
		t.Errorf("finished confirmed should be completed, got %s", got.CurrentStatus())
	}
	got, _ = env.repo.FindByID(context.Background(), fresh.ID)
	if got.CurrentStatus() != model.StatusPending {
		t.Errorf("fresh pending should be untouched, got %s", got.CurrentStatus())
	}

	// Re-running finds nothing left to do.
	again, err := env.svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ExpiredPending != 0 || again.CompletedConfirmed != 0 {
		t.Errorf("sweep must be idempotent, got %+v", again)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)

	r1 := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2 := env.newReservation(t, "room-2", 7, 3)
	if err := env.svc.Create(context.Background(), r2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.Confirm(context.Background(), r2.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := env.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Confirmed != 1 {
		t.Errorf("unexpected statistics: %+v", stats)
	}
	// Only the confirmed reservation counts toward revenue.
	if stats.Revenue != 300 {
		t.Errorf("expected revenue 300, got %.2f", stats.Revenue)
	}
}

func TestAvailableRooms(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-2", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rooms, err := env.svc.AvailableRooms(context.Background(), r.Stay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rooms) != 3 {
		t.Fatalf("expected 3 of 4 rooms available, got %d", len(rooms))
	}
	for _, room := range rooms {
		if room.ID == "room-2" {
			t.Error("booked room must not be listed as available")
		}
	}
}

func TestConflictingReservations(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conflicts, err := env.svc.ConflictingReservations(context.Background(), "room-1", r.Stay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != r.ID {
		t.Errorf("expected the created reservation as the only conflict, got %d", len(conflicts))
	}

	// Disjoint interval reports no conflicts.
	later, err := model.NewInterval(env.now.AddDate(0, 0, 20), env.now.AddDate(0, 0, 22))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conflicts, err = env.svc.ConflictingReservations(context.Background(), "room-1", later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %d", len(conflicts))
	}
}

func TestOccupancyRate(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.Confirm(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One of four sellable rooms is confirmed for the interval.
	rate, err := env.svc.OccupancyRate(context.Background(), r.Stay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.25 {
		t.Errorf("expected occupancy 0.25, got %.2f", rate)
	}
}

func TestStatusTransitions(t *testing.T) {
	env := newTestEnv(t)

	r := env.newReservation(t, "room-1", 7, 3)
	if err := env.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// completed straight from pending is illegal
	if _, err := env.svc.Complete(context.Background(), r.ID); !apperrors.HasCode(err, apperrors.CodeInvalidStatusTransition) {
		t.Errorf("expected INVALID_STATUS_TRANSITION, got %v", err)
	}

	if _, err := env.svc.Confirm(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	confirmed, err := env.svc.Complete(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.CurrentStatus() != model.StatusCompleted {
		t.Errorf("expected completed, got %s", confirmed.CurrentStatus())
	}

	// Terminal states accept nothing further.
	if _, err := env.svc.Confirm(context.Background(), r.ID); !apperrors.HasCode(err, apperrors.CodeInvalidStatusTransition) {
		t.Errorf("expected INVALID_STATUS_TRANSITION from completed, got %v", err)
	}
}

func TestGetByID_Unknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetByID(context.Background(), "res-999")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
