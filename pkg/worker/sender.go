package worker

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// ChannelSender delivers a notification over one external channel
// (email, push). The worker routes each pending notification to the
// sender registered for its channel.
type ChannelSender interface {
	// Channel returns the delivery channel this sender serves.
	Channel() notifications.Channel

	// Send attempts delivery of a single notification. An error counts as
	// one failed attempt against the notification's retry cap.
	Send(ctx context.Context, n notifications.Notification) error
}
