// Package connreg tracks live real-time connections per user and their
// membership in named broadcast groups.
//
// The registry is the source of truth the real-time notifier resolves
// targets against: connections are registered on transport handshake and
// unregistered on disconnect, while group membership (channel join/leave,
// conversation open/close) is mutated explicitly by the owning module and
// cleared implicitly when the connection goes away.
package connreg
