package worker

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("notification storage cannot be nil")

	// ErrSenderNil is returned when a nil sender is registered.
	ErrSenderNil = errors.New("channel sender cannot be nil")

	// ErrSenderAlreadyRegistered is returned when two senders are registered
	// for the same channel.
	ErrSenderAlreadyRegistered = errors.New("sender already registered for channel")

	// ErrNoSenders is returned when the worker is started without any
	// registered channel senders.
	ErrNoSenders = errors.New("no channel senders registered")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = errors.New("worker not started")
)
