package worker

import "time"

// Config holds the delivery worker configuration.
type Config struct {
	PollInterval time.Duration `env:"NOTIFY_WORKER_POLL_INTERVAL" envDefault:"15s"` // PollInterval is the delay between delivery ticks.
	BatchSize    int           `env:"NOTIFY_WORKER_BATCH_SIZE" envDefault:"25"`     // BatchSize bounds how many pending notifications one tick fetches per channel.
	MaxAttempts  int8          `env:"NOTIFY_WORKER_MAX_ATTEMPTS" envDefault:"3"`    // MaxAttempts caps delivery attempts before a notification fails permanently.
	RetryBackoff time.Duration `env:"NOTIFY_WORKER_RETRY_BACKOFF" envDefault:"1m"`  // RetryBackoff is the fixed delay before a failed notification is retried.
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() Config {
	return Config{
		PollInterval: 15 * time.Second,
		BatchSize:    25,
		MaxAttempts:  3,
		RetryBackoff: time.Minute,
	}
}
