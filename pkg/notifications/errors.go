package notifications

import (
	"errors"
	"fmt"
)

var (
	// ErrNotificationNotFound is returned when a notification does not exist
	// or is owned by another user.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("notification storage cannot be nil")

	// ErrUserIDRequired is returned when a notification is created without
	// an owning user.
	ErrUserIDRequired = errors.New("user ID is required")

	// ErrIDRequired is returned when a notification is stored without an ID.
	ErrIDRequired = errors.New("notification ID is required")
)

// InvalidTransitionError reports a rejected status change. Status moves
// only forward; the delivery worker and read operations can never bend
// a notification backward through its lifecycle.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid notification status transition: %s -> %s", e.From, e.To)
}
