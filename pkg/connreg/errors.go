package connreg

import "errors"

var (
	// ErrConnectionNotFound is returned when a group operation references a
	// handle that is not registered.
	ErrConnectionNotFound = errors.New("connection not found")
)
