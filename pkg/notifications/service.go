package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RealtimeDeliverer pushes a payload to a user's live connections.
// Satisfied by realtime.Notifier; declared here so the durable path
// depends only on the single method it needs.
type RealtimeDeliverer interface {
	NotifyUser(ctx context.Context, userID string, payload any) error
}

// Directory resolves user display metadata. Implemented outside the
// core; used when composing human-readable notification titles.
type Directory interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
}

// Service exposes the caller-facing notification operations: creating a
// durable notification with best-effort real-time push, and the
// read-state mutations a user performs on their own feed. Ownership is
// enforced on every per-user operation; acting on someone else's
// notification yields ErrNotificationNotFound.
type Service struct {
	storage   Storage
	realtime  RealtimeDeliverer
	directory Directory
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRealtime sets the best-effort real-time push used after a
// notification is persisted.
func WithRealtime(rt RealtimeDeliverer) ServiceOption {
	return func(s *Service) {
		s.realtime = rt
	}
}

// WithDirectory sets the user directory used for display names.
func WithDirectory(d Directory) ServiceOption {
	return func(s *Service) {
		s.directory = d
	}
}

// WithServiceLogger sets the logger for delivery diagnostics.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a notification service over the given storage.
func NewService(storage Storage, opts ...ServiceOption) (*Service, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	s := &Service{
		storage: storage,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Notify persists the notification as pending and then attempts a
// best-effort real-time push. Persistence failures are returned to the
// caller; push failures are logged only, since the durable record is
// what the delivery worker and the user's feed rely on.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = StatusPending
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := s.storage.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.realtime != nil {
		if err := s.realtime.NotifyUser(ctx, n.UserID, n); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "real-time push failed, notification stored",
				slog.String("notification_id", n.ID.String()),
				slog.String("user_id", n.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// NewMessageNotification builds a notification about a message from
// senderID, resolving the sender's display name through the directory
// when one is configured.
func (s *Service) NewMessageNotification(ctx context.Context, recipientID, senderID string, channel Channel, preview, actionRef string) Notification {
	sender := senderID
	if s.directory != nil {
		if name, err := s.directory.ResolveDisplayName(ctx, senderID); err == nil && name != "" {
			sender = name
		} else if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "display name lookup failed, falling back to user ID",
				slog.String("user_id", senderID),
				slog.String("error", err.Error()),
			)
		}
	}

	n := New(recipientID, channel, fmt.Sprintf("New message from %s", sender), preview)
	n.SenderID = senderID
	n.ActionRef = actionRef
	return n
}

// Get returns a single notification owned by the user.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	return s.storage.Get(ctx, userID, id)
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return s.storage.List(ctx, userID, opts)
}

// MarkRead marks one notification as read. Acting on a notification the
// user does not own fails with ErrNotificationNotFound.
func (s *Service) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.storage.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.storage.MarkRead(ctx, userID, id)
}

// MarkAllRead marks every unread notification as read for the user.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.storage.MarkAllRead(ctx, userID)
}

// UnreadCount returns the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.storage.CountUnread(ctx, userID)
}
