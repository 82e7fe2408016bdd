package config

import "time"

// OutboxConfig configures the notification outbox drain.
type OutboxConfig struct {
	// EmailBatchSize and SMSBatchSize bound how many entries one drain
	// claims per channel. SMS is kept smaller to limit the blast radius
	// of a misbehaving transport provider.
	EmailBatchSize int
	SMSBatchSize   int

	// DefaultMaxAttempts applies to entries inserted without an explicit
	// limit.
	DefaultMaxAttempts int

	// DrainInterval is the period of the background drain loop. Zero
	// disables the loop (drains happen only via the trigger endpoint).
	DrainInterval time.Duration
}

func loadOutboxConfig() OutboxConfig {
	return OutboxConfig{
		EmailBatchSize:     getEnvInt("OUTBOX_EMAIL_BATCH_SIZE", 50),
		SMSBatchSize:       getEnvInt("OUTBOX_SMS_BATCH_SIZE", 10),
		DefaultMaxAttempts: getEnvInt("OUTBOX_MAX_ATTEMPTS", 3),
		DrainInterval:      getEnvDuration("OUTBOX_DRAIN_INTERVAL", time.Minute),
	}
}
