package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Type represents the notification type/severity.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Channel is the delivery channel a notification is routed through.
// Realtime notifications reach connected clients immediately; the
// remaining channels are drained asynchronously by the delivery worker.
type Channel string

const (
	ChannelRealtime Channel = "realtime"
	ChannelEmail    Channel = "email"
	ChannelPush     Channel = "push"
)

// Status is the delivery lifecycle state of a notification.
//
// Transitions are monotonic: pending -> sent -> read, with pending ->
// failed as the terminal path once delivery retries are exhausted.
// While retries remain, a failed attempt keeps the status pending and
// pushes NextAttemptAt into the future; the attempt counter is internal
// bookkeeping, not a caller-facing state.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusRead    Status = "read"
	StatusFailed  Status = "failed"
)

// Notification is the durable record of one notification's lifecycle.
// It is created by a handler reacting to a domain event and mutated
// only by the delivery worker (status, sent time, attempts) or by the
// owning user reading it.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Channel   Channel   `json:"channel"`
	Status    Status    `json:"status"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ActionRef string    `json:"action_ref,omitempty"`
	SenderID  string    `json:"sender_id,omitempty"`

	// Retry bookkeeping, owned by the delivery worker.
	Attempts      int8       `json:"attempts"`
	MaxAttempts   int8       `json:"max_attempts"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// New creates a pending notification for the user on the given channel.
func New(userID string, channel Channel, title, body string) Notification {
	return Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      TypeInfo,
		Channel:   channel,
		Status:    StatusPending,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// MarkSent records a successful delivery. Only a pending notification
// can become sent.
func (n *Notification) MarkSent() error {
	if n.Status != StatusPending {
		return &InvalidTransitionError{From: n.Status, To: StatusSent}
	}
	n.Status = StatusSent
	now := time.Now()
	n.SentAt = &now
	n.NextAttemptAt = nil
	return nil
}

// MarkRead records the user reading the notification. Reading is a
// forward-only transition: sent notifications become read, and a
// pending realtime notification may be read directly since its
// transport delivery is best-effort and unobserved. Failed
// notifications stay failed.
func (n *Notification) MarkRead() error {
	switch n.Status {
	case StatusRead:
		return nil // already read, idempotent
	case StatusSent, StatusPending:
		n.Status = StatusRead
		now := time.Now()
		n.ReadAt = &now
		return nil
	default:
		return &InvalidTransitionError{From: n.Status, To: StatusRead}
	}
}

// RecordFailure registers a failed delivery attempt. While attempts
// remain below the cap the notification stays pending with its next
// attempt pushed out by backoff; at the cap it becomes failed, which is
// terminal. Reports whether retries are exhausted.
func (n *Notification) RecordFailure(backoff time.Duration, maxAttempts int8) (exhausted bool, err error) {
	if n.Status != StatusPending {
		return false, &InvalidTransitionError{From: n.Status, To: StatusFailed}
	}

	limit := n.MaxAttempts
	if limit <= 0 {
		limit = maxAttempts
	}

	n.Attempts++
	if n.Attempts >= limit {
		n.Status = StatusFailed
		n.NextAttemptAt = nil
		return true, nil
	}

	next := time.Now().Add(backoff)
	n.NextAttemptAt = &next
	return false, nil
}

// Due reports whether the notification is eligible for a delivery
// attempt at the given time.
func (n *Notification) Due(at time.Time) bool {
	if n.Status != StatusPending {
		return false
	}
	return n.NextAttemptAt == nil || !n.NextAttemptAt.After(at)
}

// Unread reports whether the notification counts toward the user's
// unread badge.
func (n *Notification) Unread() bool {
	return n.Status != StatusRead && n.Status != StatusFailed
}
