package eventbus

import "errors"

var (
	// ErrHandlerPanic wraps a panic recovered from a subscriber's handler.
	ErrHandlerPanic = errors.New("event handler panicked")

	// ErrPayloadTypeMismatch is returned when an envelope's payload does not
	// match the type the handler subscribed with. This indicates two event
	// types sharing the same kind string.
	ErrPayloadTypeMismatch = errors.New("event payload type mismatch")
)
