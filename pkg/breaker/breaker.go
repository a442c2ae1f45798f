package breaker

import (
	"sync"
	"time"
)

// State represents the current mode of the breaker.
type State string

const (
	// StateClosed allows all attempts; failures are counted.
	StateClosed State = "closed"
	// StateOpen rejects all attempts until the cooldown elapses.
	StateOpen State = "open"
	// StateHalfOpen allows a single probe attempt to test recovery.
	StateHalfOpen State = "half_open"
)

// Breaker is a client-side circuit breaker. Callers ask CanAttempt before
// each operation and report the outcome with RecordSuccess or RecordFailure.
// It is safe for concurrent use.
type Breaker struct {
	mu       sync.Mutex
	cfg      Config
	now      func() time.Time
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a closed breaker with the given config. Zero or negative
// config values fall back to the defaults.
func New(cfg Config, opts ...Option) *Breaker {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}

	b := &Breaker{
		cfg:   cfg,
		now:   time.Now,
		state: StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the breaker's current state, accounting for an elapsed
// cooldown (an open breaker whose cooldown has passed reports half-open).
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.cooldownElapsed() {
		return StateHalfOpen
	}
	return b.state
}

// CanAttempt reports whether the caller may perform an operation now.
// In the closed state it always returns true. In the open state it returns
// false until the cooldown elapses, at which point the breaker moves to
// half-open and grants exactly one probe; further calls return false until
// that probe's outcome is recorded.
func (b *Breaker) CanAttempt() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if !b.cooldownElapsed() {
			return false
		}
		b.state = StateHalfOpen
		b.probing = true
		return true
	case StateHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return false
	}
}

// RecordSuccess reports a successful operation. In the closed state it
// resets the failure counter. In the half-open state it closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.state = StateClosed
		b.failures = 0
		b.probing = false
	}
}

// RecordFailure reports a failed operation. In the closed state it
// increments the failure counter and opens the breaker once the counter
// reaches the threshold. In the half-open state it reopens the breaker
// and restarts the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.open()
		}
	case StateHalfOpen:
		b.open()
	}
}

// open transitions to the open state. Callers must hold b.mu.
func (b *Breaker) open() {
	b.state = StateOpen
	b.failures = 0
	b.openedAt = b.now()
	b.probing = false
}

// cooldownElapsed reports whether the open cooldown has passed.
// Callers must hold b.mu.
func (b *Breaker) cooldownElapsed() bool {
	return b.now().Sub(b.openedAt) >= b.cfg.Cooldown
}
