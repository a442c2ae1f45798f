package email

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// AddressResolver maps a user ID to an email address. Notifications carry
// only the recipient's user ID, so the application supplies the lookup
// against its own user store.
type AddressResolver interface {
	ResolveEmail(ctx context.Context, userID string) (string, error)
}

// Sender delivers email-channel notifications through an EmailSender.
// It satisfies the delivery worker's per-channel sender contract.
type Sender struct {
	mailer   EmailSender
	resolver AddressResolver
	log      *slog.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderLogger sets the logger used by the sender.
func WithSenderLogger(log *slog.Logger) SenderOption {
	return func(s *Sender) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSender creates an email channel sender.
func NewSender(mailer EmailSender, resolver AddressResolver, opts ...SenderOption) (*Sender, error) {
	if mailer == nil {
		return nil, ErrMailerNil
	}
	if resolver == nil {
		return nil, ErrAddressResolverNil
	}

	s := &Sender{
		mailer:   mailer,
		resolver: resolver,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Channel reports which notification channel this sender handles.
func (s *Sender) Channel() notifications.Channel {
	return notifications.ChannelEmail
}

// Send resolves the recipient's address and sends the notification as a
// transactional email. The notification title becomes the subject.
func (s *Sender) Send(ctx context.Context, n notifications.Notification) error {
	addr, err := s.resolver.ResolveEmail(ctx, n.UserID)
	if err != nil {
		return errors.Join(ErrAddressNotFound, err)
	}

	body, err := renderBody(n)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	return s.mailer.SendEmail(ctx, SendEmailParams{
		SendTo:   addr,
		Subject:  n.Title,
		BodyHTML: body,
		Tag:      "notification_" + string(n.Type),
	})
}

// bodyTemplate is deliberately minimal; applications with branded emails
// should wrap the mailer with their own template layer.
var bodyTemplate = template.Must(template.New("notification").Parse(`<html>
<body>
<h2>{{.Title}}</h2>
<p>{{.Body}}</p>
{{if .ActionRef}}<p><a href="{{.ActionRef}}">View details</a></p>{{end}}
</body>
</html>`))

func renderBody(n notifications.Notification) (string, error) {
	var sb strings.Builder
	if err := bodyTemplate.Execute(&sb, n); err != nil {
		return "", fmt.Errorf("render notification email: %w", err)
	}
	return sb.String(), nil
}
