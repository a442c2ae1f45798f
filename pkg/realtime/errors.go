package realtime

import "errors"

var (
	// ErrRegistryNil is returned when a nil registry is provided.
	ErrRegistryNil = errors.New("connection registry cannot be nil")

	// ErrTransportNil is returned when a nil transport is provided.
	ErrTransportNil = errors.New("transport cannot be nil")

	// ErrConnectionGone is returned when a send targets a handle that is no
	// longer attached to the transport.
	ErrConnectionGone = errors.New("connection is no longer attached")
)
