package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

const LockCollectionName = "Room_locks"

// RoomLockRepository serializes writers per room through advisory lock
// documents. The lock _id is the room reference, so at most one writer holds
// a room at a time; a TTL index on expires_at reaps locks left behind by
// crashed processes.
type RoomLockRepository interface {
	Acquire(ctx context.Context, roomID string, owner string) (*model.RoomLock, error)
	Release(ctx context.Context, roomID string) error
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document, retrying briefly on contention so a
// writer that loses the race proceeds once the winner commits and releases.
// If the room is still held after the retries, a retryable StorageConflict is
// returned.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, roomID string, owner string) (*model.RoomLock, error) {
	const (
		maxAttempts = 5
		backoff     = 100 * time.Millisecond
	)

	for attempt := 1; ; attempt++ {
		now := time.Now().UTC()
		lock := &model.RoomLock{
			ID:        roomID,
			Owner:     owner,
			CreatedAt: now,
			ExpiresAt: now.Add(r.cfg.RoomLockTTL),
		}

		_, err := r.collection.InsertOne(ctx, lock)
		if err == nil {
			return lock, nil
		}

		if !mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.StorageUnavailable(err)
		}

		if attempt >= maxAttempts {
			return nil, apperrors.StorageConflict("room " + roomID + " is locked by a concurrent request")
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Timeout("lock acquisition cancelled for room " + roomID)
		case <-time.After(backoff):
		}
	}
}

func (r *mongoRoomLockRepository) Release(ctx context.Context, roomID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}
