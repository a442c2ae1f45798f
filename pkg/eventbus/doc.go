// Package eventbus provides an in-process publish/subscribe event bus that
// decouples producing modules from consuming modules.
//
// Handlers are registered per event kind with compile-time typing via the
// generic Subscribe function, and run synchronously in registration order
// within the Publish call. Handler failures are isolated: an erroring or
// panicking subscriber is logged and never surfaces to the publisher, so
// best-effort consumers (notification fan-out, audit trails) can never roll
// back the business operation that triggered the event.
//
// Basic usage:
//
//	type MessageSent struct {
//	    ConversationID string
//	    SenderID       string
//	}
//
//	func (MessageSent) EventKind() string { return "message.sent" }
//
//	bus := eventbus.New()
//	eventbus.Subscribe(bus, func(ctx context.Context, e MessageSent) error {
//	    // react to the event
//	    return nil
//	})
//
//	bus.Publish(ctx, MessageSent{ConversationID: "c1", SenderID: "u1"})
//
// The bus is single-node and in-process by design. It gives per-publish
// handler ordering only; ordering across concurrent publishes of different
// events is not coordinated.
package eventbus
