// Package realtime fans domain events out to connected clients.
//
// The Notifier resolves target connections through a connreg.Registry and
// forwards payloads over a Transport, one connection at a time, with
// per-connection failure isolation. There is deliberately no retry here:
// real-time delivery is best-effort for clients that are connected right
// now, while durability for everyone else goes through the notification
// store and the delivery worker.
//
// WSTransport is the production Transport over gorilla/websocket; any
// implementation of the single-method Transport interface can stand in
// for tests or alternative wire protocols.
package realtime
