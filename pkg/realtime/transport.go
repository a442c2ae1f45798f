package realtime

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/connreg"
)

// Transport sends a single frame to one named connection. The wire
// protocol itself (framing, handshake) lives behind this interface;
// the notifier only needs the send primitive.
type Transport interface {
	SendToConnection(ctx context.Context, id connreg.ConnID, payload any) error
}
