package model

import "time"

// RoomLock is a short-lived advisory lock document serializing the
// availability check and the following write for a single room. The _id is
// derived from the room reference, so a unique-index violation on insert
// means another request holds the room. ExpiresAt backs a TTL index that
// reaps locks abandoned by crashed processes.
type RoomLock struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}
