package realtime_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/connreg"
	"github.com/dmitrymomot/notifykit/pkg/realtime"
)

// fakeTransport records sends and fails for configured handles.
type fakeTransport struct {
	mu      sync.Mutex
	sent    map[connreg.ConnID][]any
	failing map[connreg.ConnID]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent:    make(map[connreg.ConnID][]any),
		failing: make(map[connreg.ConnID]error),
	}
}

func (t *fakeTransport) SendToConnection(ctx context.Context, id connreg.ConnID, payload any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err, ok := t.failing[id]; ok {
		return err
	}
	t.sent[id] = append(t.sent[id], payload)
	return nil
}

func (t *fakeTransport) sentTo(id connreg.ConnID) []any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent[id]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	t.Run("requires registry", func(t *testing.T) {
		t.Parallel()

		_, err := realtime.NewNotifier(nil, newFakeTransport())
		assert.ErrorIs(t, err, realtime.ErrRegistryNil)
	})

	t.Run("requires transport", func(t *testing.T) {
		t.Parallel()

		_, err := realtime.NewNotifier(connreg.NewRegistry(), nil)
		assert.ErrorIs(t, err, realtime.ErrTransportNil)
	})
}

func TestNotifier_NotifyGroup(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all group members", func(t *testing.T) {
		t.Parallel()

		reg := connreg.NewRegistry()
		transport := newFakeTransport()
		notifier, err := realtime.NewNotifier(reg, transport, realtime.WithNotifierLogger(discardLogger()))
		require.NoError(t, err)

		reg.Register("u1", "c1", "web")
		reg.Register("u2", "c2", "web")
		require.NoError(t, reg.JoinGroup("c1", "channel:general"))
		require.NoError(t, reg.JoinGroup("c2", "channel:general"))

		require.NoError(t, notifier.NotifyGroup(context.Background(), "channel:general", "hello"))

		assert.Equal(t, []any{"hello"}, transport.sentTo("c1"))
		assert.Equal(t, []any{"hello"}, transport.sentTo("c2"))
	})

	t.Run("one failing connection does not stop the others", func(t *testing.T) {
		t.Parallel()

		reg := connreg.NewRegistry()
		transport := newFakeTransport()
		transport.failing["c2"] = errors.New("broken pipe")

		notifier, err := realtime.NewNotifier(reg, transport, realtime.WithNotifierLogger(discardLogger()))
		require.NoError(t, err)

		reg.Register("u1", "c1", "web")
		reg.Register("u2", "c2", "web")
		reg.Register("u3", "c3", "web")
		for _, id := range []connreg.ConnID{"c1", "c2", "c3"} {
			require.NoError(t, reg.JoinGroup(id, "channel:general"))
		}

		require.NoError(t, notifier.NotifyGroup(context.Background(), "channel:general", "payload"))

		assert.Equal(t, []any{"payload"}, transport.sentTo("c1"))
		assert.Empty(t, transport.sentTo("c2"))
		assert.Equal(t, []any{"payload"}, transport.sentTo("c3"))
	})

	t.Run("empty group is a no-op", func(t *testing.T) {
		t.Parallel()

		reg := connreg.NewRegistry()
		transport := newFakeTransport()
		notifier, err := realtime.NewNotifier(reg, transport, realtime.WithNotifierLogger(discardLogger()))
		require.NoError(t, err)

		assert.NoError(t, notifier.NotifyGroup(context.Background(), "channel:empty", "payload"))
	})

	t.Run("cancelled context stops delivery", func(t *testing.T) {
		t.Parallel()

		reg := connreg.NewRegistry()
		transport := newFakeTransport()
		notifier, err := realtime.NewNotifier(reg, transport, realtime.WithNotifierLogger(discardLogger()))
		require.NoError(t, err)

		reg.Register("u1", "c1", "web")
		require.NoError(t, reg.JoinGroup("c1", "channel:general"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = notifier.NotifyGroup(ctx, "channel:general", "payload")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, transport.sentTo("c1"))
	})
}

func TestNotifier_NotifyUser(t *testing.T) {
	t.Parallel()

	reg := connreg.NewRegistry()
	transport := newFakeTransport()
	notifier, err := realtime.NewNotifier(reg, transport, realtime.WithNotifierLogger(discardLogger()))
	require.NoError(t, err)

	reg.Register("u1", "c1", "web")
	reg.Register("u1", "c2", "mobile")
	reg.Register("u2", "c3", "web")

	require.NoError(t, notifier.NotifyUser(context.Background(), "u1", "ping"))

	assert.Equal(t, []any{"ping"}, transport.sentTo("c1"))
	assert.Equal(t, []any{"ping"}, transport.sentTo("c2"))
	assert.Empty(t, transport.sentTo("c3"))
}

func TestNotifier_NotifyGroupExcept(t *testing.T) {
	t.Parallel()

	reg := connreg.NewRegistry()
	transport := newFakeTransport()
	notifier, err := realtime.NewNotifier(reg, transport, realtime.WithNotifierLogger(discardLogger()))
	require.NoError(t, err)

	reg.Register("u1", "c1", "web")
	reg.Register("u1", "c2", "mobile")
	reg.Register("u2", "c3", "web")
	for _, id := range []connreg.ConnID{"c1", "c2", "c3"} {
		require.NoError(t, reg.JoinGroup(id, "conversation:42"))
	}

	// u1 sent the message: every one of their devices is excluded.
	require.NoError(t, notifier.NotifyGroupExcept(context.Background(), "conversation:42", "u1", "new message"))

	assert.Empty(t, transport.sentTo("c1"))
	assert.Empty(t, transport.sentTo("c2"))
	assert.Equal(t, []any{"new message"}, transport.sentTo("c3"))
}
