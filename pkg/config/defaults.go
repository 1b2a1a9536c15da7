package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innkeep"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxStayNights     = 30
	DefaultMaxAdvanceDays    = 365
	DefaultCancelCutoffHours = 24
	DefaultFreeCancelHours   = 48
	DefaultLateCancelFee     = 0.25
	DefaultLastMinuteFee     = 0.50
	DefaultPendingExpiry     = 24

	DefaultRoomLockTTL    = 10 * time.Second
	DefaultSweepInterval  = 5 * time.Minute
	DefaultSweepBatchSize = 100

	DefaultEventsTopic    = "reservation-events"
	DefaultEventsDLQTopic = ""
	DefaultNotifierGroup  = "innkeep-notifier"

	DefaultPaginationLimit = 100
)
