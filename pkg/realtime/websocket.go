package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/connreg"
)

// WSTransport implements Transport over gorilla/websocket connections.
// It owns the socket table and serializes writes per connection, since
// gorilla permits at most one concurrent writer per socket.
type WSTransport struct {
	mu           sync.RWMutex
	conns        map[connreg.ConnID]*wsConn
	writeTimeout time.Duration
	logger       *slog.Logger
}

type wsConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// WSTransportOption configures a WSTransport.
type WSTransportOption func(*WSTransport)

// WithWriteTimeout sets the per-frame write deadline. Default is 10s.
func WithWriteTimeout(d time.Duration) WSTransportOption {
	return func(t *WSTransport) {
		if d > 0 {
			t.writeTimeout = d
		}
	}
}

// WithWSLogger sets the logger for connection lifecycle diagnostics.
func WithWSLogger(logger *slog.Logger) WSTransportOption {
	return func(t *WSTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewWSTransport creates an empty websocket transport.
func NewWSTransport(opts ...WSTransportOption) *WSTransport {
	t := &WSTransport{
		conns:        make(map[connreg.ConnID]*wsConn),
		writeTimeout: 10 * time.Second,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Connect registers an upgraded websocket with both the transport and
// the registry, returning the handle assigned to it. The caller keeps
// running the read loop and must call Disconnect when the socket dies.
func (t *WSTransport) Connect(reg *connreg.Registry, userID, device string, ws *websocket.Conn) connreg.ConnID {
	id := connreg.ConnID(uuid.New().String())

	t.mu.Lock()
	t.conns[id] = &wsConn{ws: ws}
	t.mu.Unlock()

	reg.Register(userID, id, device)

	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "websocket connected",
		slog.String("connection_id", string(id)),
		slog.String("user_id", userID),
	)

	return id
}

// Disconnect removes the connection from the transport and the
// registry and closes the socket. Idempotent.
func (t *WSTransport) Disconnect(reg *connreg.Registry, id connreg.ConnID) {
	t.mu.Lock()
	conn, ok := t.conns[id]
	delete(t.conns, id)
	t.mu.Unlock()

	reg.Unregister(id)

	if ok {
		_ = conn.ws.Close()
		t.logger.LogAttrs(context.Background(), slog.LevelDebug, "websocket disconnected",
			slog.String("connection_id", string(id)),
		)
	}
}

// SendToConnection writes the payload as a single JSON frame to the
// named socket, bounded by the configured write deadline.
func (t *WSTransport) SendToConnection(ctx context.Context, id connreg.ConnID, payload any) error {
	t.mu.RLock()
	conn, ok := t.conns[id]
	t.mu.RUnlock()

	if !ok {
		return ErrConnectionGone
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	if err := conn.ws.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return err
	}
	return conn.ws.WriteJSON(payload)
}

// Len returns the number of attached sockets.
func (t *WSTransport) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}
