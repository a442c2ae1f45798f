package notifications_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/connreg"
	"github.com/dmitrymomot/notifykit/pkg/eventbus"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/realtime"
	"github.com/dmitrymomot/notifykit/pkg/worker"
)

// recordingTransport captures payloads per connection and can be told to
// fail specific connections.
type recordingTransport struct {
	mu       sync.Mutex
	received map[connreg.ConnID][]any
	failing  map[connreg.ConnID]error
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{
		received: make(map[connreg.ConnID][]any),
		failing:  make(map[connreg.ConnID]error),
	}
}

func (t *recordingTransport) SendToConnection(_ context.Context, id connreg.ConnID, payload any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.failing[id]; ok {
		return err
	}
	t.received[id] = append(t.received[id], payload)
	return nil
}

func (t *recordingTransport) countFor(id connreg.ConnID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.received[id])
}

type messagePosted struct {
	ThreadID   string
	SenderID   string
	Recipients []string
	Preview    string
}

func (messagePosted) EventKind() string { return "message.posted" }

type channelRecorder struct {
	mu   sync.Mutex
	sent []notifications.Notification
	ch   notifications.Channel
}

func (s *channelRecorder) Channel() notifications.Channel { return s.ch }

func (s *channelRecorder) Send(_ context.Context, n notifications.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

// TestMessageFanout wires the event bus, connection registry, realtime
// notifier, notification service and delivery worker together and runs a
// posted message through the whole pipeline.
func TestMessageFanout(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	registry := connreg.NewRegistry()
	transport := newRecordingTransport()

	notifier, err := realtime.NewNotifier(registry, transport, realtime.WithNotifierLogger(log))
	require.NoError(t, err)

	storage := notifications.NewMemoryStorage()
	svc, err := notifications.NewService(storage,
		notifications.WithRealtime(notifier),
		notifications.WithServiceLogger(log),
	)
	require.NoError(t, err)

	bus := eventbus.New(eventbus.WithLogger(log))
	eventbus.Subscribe(bus, func(ctx context.Context, ev messagePosted) error {
		for _, recipient := range ev.Recipients {
			if recipient == ev.SenderID {
				continue
			}
			n := svc.NewMessageNotification(ctx, recipient, ev.SenderID, notifications.ChannelRealtime, ev.Preview, "/threads/"+ev.ThreadID)
			if err := svc.Notify(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})

	// alice has two devices, bob one; bob's connection is broken.
	aliceWeb := connreg.ConnID("alice-web")
	alicePhone := connreg.ConnID("alice-phone")
	bobWeb := connreg.ConnID("bob-web")
	registry.Register("alice", aliceWeb, "web")
	registry.Register("alice", alicePhone, "mobile")
	registry.Register("bob", bobWeb, "web")
	transport.failing[bobWeb] = realtime.ErrConnectionGone

	bus.Publish(ctx, messagePosted{
		ThreadID:   "th-1",
		SenderID:   "carol",
		Recipients: []string{"alice", "bob", "carol"},
		Preview:    "lunch?",
	})

	// Both of alice's devices got the push; bob's broken connection did not.
	assert.Equal(t, 1, transport.countFor(aliceWeb))
	assert.Equal(t, 1, transport.countFor(alicePhone))
	assert.Equal(t, 0, transport.countFor(bobWeb))

	// The notification is durable for every recipient regardless of push
	// outcome, and the sender got nothing.
	aliceList, err := svc.List(ctx, "alice", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, aliceList, 1)
	assert.Equal(t, "New message from carol", aliceList[0].Title)

	bobList, err := svc.List(ctx, "bob", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, notifications.StatusPending, bobList[0].Status)

	carolList, err := svc.List(ctx, "carol", notifications.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, carolList)
}

// TestWorkerDrainsServiceBacklog checks that notifications persisted by the
// service are picked up and marked sent by the delivery worker.
func TestWorkerDrainsServiceBacklog(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	storage := notifications.NewMemoryStorage()
	svc, err := notifications.NewService(storage, notifications.WithServiceLogger(log))
	require.NoError(t, err)

	n := svc.NewMessageNotification(ctx, "alice", "bob", notifications.ChannelEmail, "see attached", "")
	require.NoError(t, svc.Notify(ctx, n))

	cfg := worker.DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond
	w, err := worker.New(storage, cfg, worker.WithLogger(log))
	require.NoError(t, err)

	recorder := &channelRecorder{ch: notifications.ChannelEmail}
	require.NoError(t, w.RegisterSender(recorder))

	w.Tick(ctx)

	require.Len(t, recorder.sent, 1)
	assert.Equal(t, "alice", recorder.sent[0].UserID)

	list, err := svc.List(ctx, "alice", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, notifications.StatusSent, list[0].Status)
	require.NotNil(t, list[0].SentAt)
}
