package email_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveEmail(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	t.Run("nil mailer", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewSender(nil, new(MockResolver))
		assert.ErrorIs(t, err, email.ErrMailerNil)
	})

	t.Run("nil resolver", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewSender(new(MockMailer), nil)
		assert.ErrorIs(t, err, email.ErrAddressResolverNil)
	})
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	t.Run("resolves address and sends", func(t *testing.T) {
		t.Parallel()

		mailer := new(MockMailer)
		resolver := new(MockResolver)

		resolver.On("ResolveEmail", mock.Anything, "user-1").Return("user@example.com", nil)
		mailer.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "user@example.com" &&
				p.Subject == "Deploy finished" &&
				p.Tag == "notification_success"
		})).Return(nil)

		sender, err := email.NewSender(mailer, resolver)
		require.NoError(t, err)
		assert.Equal(t, notifications.ChannelEmail, sender.Channel())

		n := notifications.New("user-1", notifications.ChannelEmail, "Deploy finished", "Build 42 is live.")
		n.Type = notifications.TypeSuccess
		n.ActionRef = "https://example.com/deploys/42"

		require.NoError(t, sender.Send(context.Background(), n))

		mailer.AssertExpectations(t)
		resolver.AssertExpectations(t)
	})

	t.Run("body contains action link", func(t *testing.T) {
		t.Parallel()

		mailer := new(MockMailer)
		resolver := new(MockResolver)

		var captured email.SendEmailParams
		resolver.On("ResolveEmail", mock.Anything, "user-1").Return("user@example.com", nil)
		mailer.On("SendEmail", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(email.SendEmailParams)
			}).
			Return(nil)

		sender, err := email.NewSender(mailer, resolver)
		require.NoError(t, err)

		n := notifications.New("user-1", notifications.ChannelEmail, "Deploy finished", "Build 42 is live.")
		n.ActionRef = "https://example.com/deploys/42"

		require.NoError(t, sender.Send(context.Background(), n))
		assert.Contains(t, captured.BodyHTML, "Build 42 is live.")
		assert.Contains(t, captured.BodyHTML, `href="https://example.com/deploys/42"`)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		t.Parallel()

		mailer := new(MockMailer)
		resolver := new(MockResolver)

		resolver.On("ResolveEmail", mock.Anything, "ghost").Return("", errors.New("no such user"))

		sender, err := email.NewSender(mailer, resolver)
		require.NoError(t, err)

		n := notifications.New("ghost", notifications.ChannelEmail, "Hello", "World")
		err = sender.Send(context.Background(), n)
		assert.ErrorIs(t, err, email.ErrAddressNotFound)
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("mailer failure is propagated", func(t *testing.T) {
		t.Parallel()

		mailer := new(MockMailer)
		resolver := new(MockResolver)

		resolver.On("ResolveEmail", mock.Anything, "user-1").Return("user@example.com", nil)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail)

		sender, err := email.NewSender(mailer, resolver)
		require.NoError(t, err)

		n := notifications.New("user-1", notifications.ChannelEmail, "Hello", "World")
		assert.ErrorIs(t, sender.Send(context.Background(), n), email.ErrFailedToSendEmail)
	})
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>Hi</p>",
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing recipient", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.SendTo = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("malformed recipient", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.SendTo = "not-an-email"
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.Subject = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("missing body", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.BodyHTML = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := email.NewDevSender(log)

	t.Run("accepts valid email", func(t *testing.T) {
		t.Parallel()
		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Hello",
			BodyHTML: "<p>Hi</p>",
		})
		assert.NoError(t, err)
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()
		err := sender.SendEmail(context.Background(), email.SendEmailParams{})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
	})
}
