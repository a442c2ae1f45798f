package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event published on the bus. Implementations must
// declare their kind on the value receiver so the bus can derive the
// kind from a zero value during subscription.
type Event interface {
	EventKind() string
}

// Envelope wraps a published event with its identity and publish time.
// Envelopes are immutable once published; the ID exists for logging and
// idempotency checks downstream, not for deduplication.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Event     `json:"payload"`
}

func newEnvelope(event Event) Envelope {
	return Envelope{
		ID:         uuid.New(),
		Kind:       event.EventKind(),
		OccurredAt: time.Now(),
		Payload:    event,
	}
}
