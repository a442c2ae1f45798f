package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler processes a published envelope. Returning an error marks the
// handler invocation as failed; the failure is logged and never
// propagated to the publisher.
type Handler func(ctx context.Context, env Envelope) error

type subscription struct {
	name    string
	handler Handler
}

// Bus is an in-process publish/subscribe event bus. Handlers are keyed
// by event kind and invoked synchronously in registration order. All
// subscriptions are expected to happen during system wiring, before
// traffic begins; the handler map is still lock-guarded so concurrent
// module initialization stays safe.
type Bus struct {
	subscriptions map[string][]subscription
	mu            sync.RWMutex
	logger        *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handler diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an event bus with an empty handler table.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscriptions: make(map[string][]subscription),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers a typed handler for every future publish of T.
// The event kind is derived from the zero value of T, which keeps
// registration compile-time typed instead of relying on runtime type
// lookups. Multiple handlers may be registered per kind; they run in
// registration order. There is no unsubscribe: registration lasts for
// the process lifetime.
func Subscribe[T Event](b *Bus, fn func(ctx context.Context, event T) error) {
	var zero T
	kind := zero.EventKind()
	name := fmt.Sprintf("%T", fn)

	wrapped := func(ctx context.Context, env Envelope) error {
		event, ok := env.Payload.(T)
		if !ok {
			return fmt.Errorf("%w: kind %q carries %T", ErrPayloadTypeMismatch, env.Kind, env.Payload)
		}
		return fn(ctx, event)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[kind] = append(b.subscriptions[kind], subscription{name: name, handler: wrapped})
}

// Publish delivers the event to every handler registered for its kind,
// in registration order, awaiting each handler before moving to the
// next. Publish is fire-and-forget from the caller's perspective: a
// handler error or panic is logged and never aborts the remaining
// handlers, and publishing with zero subscribers is not an error. When
// ctx is cancelled mid-publish, remaining handlers are skipped; effects
// already applied are not rolled back.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event == nil {
		b.logger.LogAttrs(ctx, slog.LevelWarn, "ignoring nil event")
		return
	}

	env := newEnvelope(event)

	b.mu.RLock()
	subs := b.subscriptions[env.Kind]
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.logger.LogAttrs(ctx, slog.LevelDebug, "no subscribers for event",
			slog.String("event_id", env.ID.String()),
			slog.String("event_kind", env.Kind),
		)
		return
	}

	for i, sub := range subs {
		if ctx.Err() != nil {
			b.logger.LogAttrs(ctx, slog.LevelWarn, "publish cancelled, skipping remaining handlers",
				slog.String("event_id", env.ID.String()),
				slog.String("event_kind", env.Kind),
				slog.Int("handlers_skipped", len(subs)-i),
			)
			return
		}

		if err := b.invoke(ctx, sub, env); err != nil {
			b.logger.LogAttrs(ctx, slog.LevelError, "event handler failed",
				slog.String("event_id", env.ID.String()),
				slog.String("event_kind", env.Kind),
				slog.String("handler", sub.name),
				slog.Int("handler_index", i),
				slog.String("error", err.Error()),
			)
		}
	}
}

// invoke runs a single handler with a panic boundary so one misbehaving
// subscriber cannot take down the publisher or its siblings.
func (b *Bus) invoke(ctx context.Context, sub subscription, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	return sub.handler(ctx, env)
}

// SubscriberCount returns the number of handlers registered for a kind.
func (b *Bus) SubscriberCount(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[kind])
}
