package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/config"
	mongotx "innkeep/pkg/db/mongo"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error)
	FindActiveByRoom(ctx context.Context, roomID string, excludeID string) ([]*model.Reservation, error)
	FindByGuest(ctx context.Context, guestID string, status *model.Status, limit int, offset int64) ([]*model.Reservation, error)
	CountByGuest(ctx context.Context, guestID string, status *model.Status) (int64, error)
	FindPendingCheckInBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error)
	FindConfirmedCheckOutBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error)
	FindConfirmedOverlapping(ctx context.Context, roomID string, stay model.Interval) ([]*model.Reservation, error)
	FindActiveOverlapping(ctx context.Context, stay model.Interval) ([]*model.Reservation, error)
	CountByStatus(ctx context.Context, status model.Status) (int64, error)
	SumTotalsByStatus(ctx context.Context, statuses []model.Status) (float64, error)
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction. SessionContext cannot be wrapped without breaking transaction
// semantics, so it is returned unchanged with a no-op cancel.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// mapWriteError translates driver failures into the shared error taxonomy so
// callers can tell transient storage trouble from definitive answers.
func mapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.StorageConflict(fmt.Sprintf("%s hit a concurrent write", op))
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return apperrors.StorageUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return mapWriteError(err, "create reservation")
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, mapWriteError(err, "find reservation")
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"stay":           reservation.Stay,
		"extras":         reservation.Extras,
		"total":          reservation.Total,
		"status":         reservation.Status,
		"status_history": reservation.StatusHistory,
		"opinions":       reservation.Opinions,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, mapWriteError(err, "update reservation")
	}
	if result.MatchedCount == 0 {
		return nil, reserrors.ErrNotFound
	}

	return result, nil
}

// FindActiveByRoom returns the pending and confirmed reservations holding the
// room. excludeID, when set, leaves out the reservation being modified so it
// does not conflict with itself.
func (r *mongoReservationRepository) FindActiveByRoom(ctx context.Context, roomID string, excludeID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id": roomID,
		"status":  bson.M{"$in": []model.Status{model.StatusPending, model.StatusConfirmed}},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, mapWriteError(err, "find active reservations")
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func guestFilter(guestID string, status *model.Status) bson.M {
	filter := bson.M{"guest_id": guestID}
	if status != nil {
		filter["status"] = *status
	}
	return filter
}

func (r *mongoReservationRepository) FindByGuest(ctx context.Context, guestID string, status *model.Status, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "stay.check_in", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, guestFilter(guestID, status), opts)
	if err != nil {
		return nil, mapWriteError(err, "find guest reservations")
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) CountByGuest(ctx context.Context, guestID string, status *model.Status) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, guestFilter(guestID, status))
	if err != nil {
		return 0, mapWriteError(err, "count guest reservations")
	}
	return count, nil
}

func (r *mongoReservationRepository) FindPendingCheckInBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	return r.findByStatusAndField(ctx, model.StatusPending, "stay.check_in", cutoff, limit)
}

func (r *mongoReservationRepository) FindConfirmedCheckOutBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	return r.findByStatusAndField(ctx, model.StatusConfirmed, "stay.check_out", cutoff, limit)
}

func (r *mongoReservationRepository) findByStatusAndField(ctx context.Context, status model.Status, field string, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status": status,
		field:    bson.M{"$lt": cutoff},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapWriteError(err, "find reservations for sweep")
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) FindConfirmedOverlapping(ctx context.Context, roomID string, stay model.Interval) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":         model.StatusConfirmed,
		"stay.check_in":  bson.M{"$lt": stay.CheckOut},
		"stay.check_out": bson.M{"$gt": stay.CheckIn},
	}
	if roomID != "" {
		filter["room_id"] = roomID
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, mapWriteError(err, "find overlapping reservations")
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

// FindActiveOverlapping returns every pending or confirmed reservation, any
// room, whose stay overlaps the interval. Backs the available-rooms query.
func (r *mongoReservationRepository) FindActiveOverlapping(ctx context.Context, stay model.Interval) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":         bson.M{"$in": []model.Status{model.StatusPending, model.StatusConfirmed}},
		"stay.check_in":  bson.M{"$lt": stay.CheckOut},
		"stay.check_out": bson.M{"$gt": stay.CheckIn},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, mapWriteError(err, "find active overlapping reservations")
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, mapWriteError(err, "count reservations by status")
	}
	return count, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, mapWriteError(err, "count reservations")
	}
	return count, nil
}

func (r *mongoReservationRepository) SumTotalsByStatus(ctx context.Context, statuses []model.Status) (float64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": statuses}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$total"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, mapWriteError(err, "sum reservation totals")
	}
	defer cursor.Close(ctx)

	var results []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode revenue aggregate: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Revenue, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
