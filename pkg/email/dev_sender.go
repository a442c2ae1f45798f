package email

import (
	"context"
	"log/slog"
)

// DevSender implements EmailSender for local development. It logs the
// email instead of sending it through an email service.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development email sender that writes emails to
// the given logger. A nil logger falls back to slog.Default().
func NewDevSender(log *slog.Logger) EmailSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

// SendEmail logs the email at info level. The HTML body is logged at
// debug level to keep the default output readable.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.LogAttrs(ctx, slog.LevelInfo, "dev email sender: email captured",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	d.log.LogAttrs(ctx, slog.LevelDebug, "dev email sender: email body",
		slog.String("body_html", params.BodyHTML),
	)
	return nil
}
