package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage handles notification persistence and retrieval. All lookups
// that act on behalf of a user are keyed by userID so ownership is
// enforced at the storage boundary: acting on another user's
// notification surfaces ErrNotificationNotFound, never the record.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, n Notification) error

	// Get retrieves a single notification owned by the user.
	Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error)

	// Update persists lifecycle changes (status, attempts, timestamps).
	Update(ctx context.Context, n Notification) error

	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// GetPending returns up to limit pending notifications for the channel
	// that are due for a delivery attempt, oldest first. The bounded batch
	// keeps worker memory flat regardless of backlog size.
	GetPending(ctx context.Context, channel Channel, limit int) ([]Notification, error)

	// MarkRead marks the given notifications as read for the user.
	MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error

	// MarkAllRead marks every unread notification as read for the user.
	MarkAllRead(ctx context.Context, userID string) error

	// CountUnread returns the user's unread notification count.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int        // Maximum number of notifications to return (0 = no limit)
	Offset     int        // Number of notifications to skip for pagination
	OnlyUnread bool       // When true, only return unread notifications
	Channels   []Channel  // If specified, only return notifications on these channels
	Since      *time.Time // If specified, only return notifications created after this time
}
