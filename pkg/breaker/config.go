package breaker

import "time"

// Config controls when the breaker opens and how long it stays open.
type Config struct {
	// FailureThreshold is the number of consecutive failures in the
	// closed state that trips the breaker open.
	FailureThreshold int `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"5"`
	// Cooldown is how long the breaker rejects attempts after opening
	// before it allows a single probe.
	Cooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// DefaultConfig returns a Config with the same values as the env defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}
