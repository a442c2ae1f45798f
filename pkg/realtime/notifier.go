package realtime

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/connreg"
)

// Notifier pushes event payloads to connected clients, resolving target
// connection handles through the registry. Delivery is genuinely
// best-effort: a failed send to one connection is logged and never stops
// delivery to the others, and there is no retry. Durability for
// offline recipients belongs to the notification store and the delivery
// worker, not here.
type Notifier struct {
	registry  *connreg.Registry
	transport Transport
	logger    *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger for per-connection send diagnostics.
func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNotifier creates a notifier over the given registry and transport.
func NewNotifier(registry *connreg.Registry, transport Transport, opts ...NotifierOption) (*Notifier, error) {
	if registry == nil {
		return nil, ErrRegistryNil
	}
	if transport == nil {
		return nil, ErrTransportNil
	}

	n := &Notifier{
		registry:  registry,
		transport: transport,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// NotifyGroup sends the payload to every connection in the group.
// Returns ctx.Err() if cancelled mid-delivery; per-connection transport
// failures are absorbed and logged.
func (n *Notifier) NotifyGroup(ctx context.Context, groupKey string, payload any) error {
	return n.send(ctx, n.registry.GroupMembers(groupKey), "", payload)
}

// NotifyUser sends the payload to every live connection the user owns.
func (n *Notifier) NotifyUser(ctx context.Context, userID string, payload any) error {
	return n.send(ctx, n.registry.ConnectionsFor(userID), "", payload)
}

// NotifyGroupExcept sends the payload to every connection in the group
// except those owned by excludedUserID. Used to broadcast a change to a
// room without echoing it back to its originator.
func (n *Notifier) NotifyGroupExcept(ctx context.Context, groupKey, excludedUserID string, payload any) error {
	return n.send(ctx, n.registry.GroupMembers(groupKey), excludedUserID, payload)
}

func (n *Notifier) send(ctx context.Context, ids []connreg.ConnID, excludedUserID string, payload any) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelWarn, "delivery cancelled, skipping remaining connections",
				slog.String("connection_id", string(id)),
			)
			return err
		}

		if excludedUserID != "" {
			conn, ok := n.registry.Get(id)
			if !ok || conn.UserID == excludedUserID {
				continue
			}
		}

		if err := n.transport.SendToConnection(ctx, id, payload); err != nil {
			// Per-connection isolation: one dead socket must not starve the rest.
			n.logger.LogAttrs(ctx, slog.LevelWarn, "failed to send to connection",
				slog.String("connection_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
