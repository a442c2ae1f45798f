package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Worker drains pending notifications from storage and delivers them
// over the registered channel senders. It runs as a single background
// loop for the process lifetime: ticks execute inline in that loop, so
// two ticks can never overlap and race on the same pending batch. A
// tick that outlasts the poll interval simply absorbs the missed
// firings.
type Worker struct {
	storage notifications.Storage
	senders map[notifications.Channel]ChannelSender
	cfg     Config
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger for delivery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a delivery worker over the given storage.
func New(storage notifications.Storage, cfg Config, opts ...Option) (*Worker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultConfig().RetryBackoff
	}

	w := &Worker{
		storage: storage,
		senders: make(map[notifications.Channel]ChannelSender),
		cfg:     cfg,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// RegisterSender registers a sender for its channel. Registering two
// senders for the same channel is a wiring bug and fails.
func (w *Worker) RegisterSender(sender ChannelSender) error {
	if sender == nil {
		return ErrSenderNil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	ch := sender.Channel()
	if _, exists := w.senders[ch]; exists {
		return fmt.Errorf("%w: %s", ErrSenderAlreadyRegistered, ch)
	}
	w.senders[ch] = sender
	return nil
}

// Start begins the delivery loop in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrAlreadyStarted
	}
	if len(w.senders) == 0 {
		return ErrNoSenders
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(runCtx)

	w.logger.Info("delivery worker started",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("batch_size", w.cfg.BatchSize),
	)

	return nil
}

// Stop cancels the loop and waits for the in-flight tick to finish, so
// no notification is left with a half-applied status change.
func (w *Worker) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}

	cancel()
	<-done

	w.logger.Info("delivery worker stopped")
	return nil
}

// Run starts the worker and returns a function suitable for errgroup.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return w.Stop()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick processes one bounded batch of due pending notifications for
// every registered channel. Exported so callers can drive delivery
// manually in tests or one-shot jobs; the background loop calls it on
// every poll interval.
func (w *Worker) Tick(ctx context.Context) {
	w.mu.Lock()
	senders := make([]ChannelSender, 0, len(w.senders))
	for _, s := range w.senders {
		senders = append(senders, s)
	}
	w.mu.Unlock()

	for _, sender := range senders {
		if ctx.Err() != nil {
			return
		}
		w.drainChannel(ctx, sender)
	}
}

func (w *Worker) drainChannel(ctx context.Context, sender ChannelSender) {
	channel := sender.Channel()

	batch, err := w.storage.GetPending(ctx, channel, w.cfg.BatchSize)
	if err != nil {
		w.logger.LogAttrs(ctx, slog.LevelError, "failed to fetch pending notifications",
			slog.String("channel", string(channel)),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, n := range batch {
		if ctx.Err() != nil {
			return
		}

		// Per-item isolation: one failed delivery never aborts the batch.
		if err := w.deliver(ctx, sender, n); err != nil {
			w.logger.LogAttrs(ctx, slog.LevelError, "failed to record delivery outcome",
				slog.String("notification_id", n.ID.String()),
				slog.String("channel", string(channel)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, sender ChannelSender, n notifications.Notification) error {
	start := time.Now()
	sendErr := w.send(ctx, sender, n)
	duration := time.Since(start)

	if sendErr == nil {
		if err := n.MarkSent(); err != nil {
			return err
		}
		if err := w.storage.Update(ctx, n); err != nil {
			return err
		}

		w.logger.LogAttrs(ctx, slog.LevelInfo, "notification delivered",
			slog.String("notification_id", n.ID.String()),
			slog.String("channel", string(n.Channel)),
			slog.Duration("duration", duration),
		)
		return nil
	}

	exhausted, err := n.RecordFailure(w.cfg.RetryBackoff, w.cfg.MaxAttempts)
	if err != nil {
		return err
	}
	if err := w.storage.Update(ctx, n); err != nil {
		return err
	}

	level := slog.LevelWarn
	msg := "delivery failed, will retry"
	if exhausted {
		level = slog.LevelError
		msg = "delivery failed permanently, retries exhausted"
	}
	w.logger.LogAttrs(ctx, level, msg,
		slog.String("notification_id", n.ID.String()),
		slog.String("channel", string(n.Channel)),
		slog.Int("attempts", int(n.Attempts)),
		slog.Duration("duration", duration),
		slog.String("error", sendErr.Error()),
	)

	return nil
}

// send runs the channel sender with a panic boundary so a misbehaving
// sender counts as a failed attempt instead of killing the loop.
func (w *Worker) send(ctx context.Context, sender ChannelSender, n notifications.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in channel sender: %v", r)
		}
	}()

	return sender.Send(ctx, n)
}
