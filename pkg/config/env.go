package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxStayNights     = "MAX_STAY_NIGHTS"
	EnvMaxAdvanceDays    = "MAX_ADVANCE_DAYS"
	EnvCancelCutoffHours = "CANCEL_CUTOFF_HOURS"
	EnvFreeCancelHours   = "FREE_CANCEL_HOURS"
	EnvLateCancelFee     = "LATE_CANCEL_FEE_RATE"
	EnvLastMinuteFee     = "LAST_MINUTE_CANCEL_FEE_RATE"
	EnvPendingExpiry     = "PENDING_EXPIRY_HOURS"

	EnvRoomLockTTL    = "ROOM_LOCK_TTL"
	EnvSweepInterval  = "SWEEP_INTERVAL"
	EnvSweepBatchSize = "SWEEP_BATCH_SIZE"

	EnvEventsTopic    = "RESERVATION_EVENTS_TOPIC"
	EnvEventsDLQTopic = "RESERVATION_EVENTS_DLQ_TOPIC"
	EnvNotifierGroup  = "NOTIFIER_GROUP_ID"
)
