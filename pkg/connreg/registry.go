package connreg

import (
	"sync"
	"time"
)

// ConnID identifies a single live real-time connection. A user may own
// several at once (multi-device fan-out).
type ConnID string

// Connection describes a registered real-time connection.
type Connection struct {
	ID          ConnID
	UserID      string
	Device      string
	ConnectedAt time.Time
}

// Registry maps user identity to live connection handles and tracks
// group membership for rooms (channels, conversations, per-user feeds).
// It is a hot path on every broadcast: all mutation and lookup
// operations are safe under concurrent callers, guarded by a single
// RWMutex over the internal maps.
type Registry struct {
	mu          sync.RWMutex
	conns       map[ConnID]Connection
	byUser      map[string]map[ConnID]struct{}
	groups      map[string]map[ConnID]struct{}
	memberships map[ConnID]map[string]struct{}
}

// NewRegistry creates an empty connection registry. The registry lives
// for the process lifetime and is owned by the composition root.
func NewRegistry() *Registry {
	return &Registry{
		conns:       make(map[ConnID]Connection),
		byUser:      make(map[string]map[ConnID]struct{}),
		groups:      make(map[string]map[ConnID]struct{}),
		memberships: make(map[ConnID]map[string]struct{}),
	}
}

// Register adds a connection for the user. Registering an ID that is
// already present replaces the previous record and keeps its group
// memberships intact.
func (r *Registry) Register(userID string, id ConnID, device string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[id]; ok && prev.UserID != userID {
		r.removeUserIndex(prev.UserID, id)
	}

	r.conns[id] = Connection{
		ID:          id,
		UserID:      userID,
		Device:      device,
		ConnectedAt: time.Now(),
	}

	if _, ok := r.byUser[userID]; !ok {
		r.byUser[userID] = make(map[ConnID]struct{})
	}
	r.byUser[userID][id] = struct{}{}
}

// Unregister removes the connection and clears its group memberships.
// Removing an unknown handle is a no-op, not an error: disconnect
// callbacks can race with explicit cleanup.
func (r *Registry) Unregister(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return
	}

	delete(r.conns, id)
	r.removeUserIndex(conn.UserID, id)

	for group := range r.memberships[id] {
		r.removeGroupIndex(group, id)
	}
	delete(r.memberships, id)
}

// JoinGroup adds the connection to a named broadcast group. Joining
// with an unknown handle returns ErrConnectionNotFound so callers can
// detect join-after-disconnect races.
func (r *Registry) JoinGroup(id ConnID, groupKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; !ok {
		return ErrConnectionNotFound
	}

	if _, ok := r.groups[groupKey]; !ok {
		r.groups[groupKey] = make(map[ConnID]struct{})
	}
	r.groups[groupKey][id] = struct{}{}

	if _, ok := r.memberships[id]; !ok {
		r.memberships[id] = make(map[string]struct{})
	}
	r.memberships[id][groupKey] = struct{}{}

	return nil
}

// LeaveGroup removes the connection from the group. Leaving a group the
// connection is not a member of is a no-op.
func (r *Registry) LeaveGroup(id ConnID, groupKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeGroupIndex(groupKey, id)

	if members, ok := r.memberships[id]; ok {
		delete(members, groupKey)
		if len(members) == 0 {
			delete(r.memberships, id)
		}
	}
}

// ConnectionsFor returns the handles of all live connections owned by
// the user. The returned slice is a copy and safe to retain.
func (r *Registry) ConnectionsFor(userID string) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ConnID, 0, len(r.byUser[userID]))
	for id := range r.byUser[userID] {
		ids = append(ids, id)
	}
	return ids
}

// GroupMembers returns the handles of all connections currently in the
// group. The returned slice is a copy and safe to retain.
func (r *Registry) GroupMembers(groupKey string) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ConnID, 0, len(r.groups[groupKey]))
	for id := range r.groups[groupKey] {
		ids = append(ids, id)
	}
	return ids
}

// Get returns the connection record for a handle.
func (r *Registry) Get(id ConnID) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	return conn, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// removeUserIndex must be called with the write lock held.
func (r *Registry) removeUserIndex(userID string, id ConnID) {
	if ids, ok := r.byUser[userID]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byUser, userID)
		}
	}
}

// removeGroupIndex must be called with the write lock held.
func (r *Registry) removeGroupIndex(groupKey string, id ConnID) {
	if members, ok := r.groups[groupKey]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.groups, groupKey)
		}
	}
}
