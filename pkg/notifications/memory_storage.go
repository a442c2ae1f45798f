package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	items  map[uuid.UUID]Notification
	byUser map[string][]uuid.UUID
	mu     sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items:  make(map[uuid.UUID]Notification),
		byUser: make(map[string][]uuid.UUID),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		return ErrIDRequired
	}
	if n.UserID == "" {
		return ErrUserIDRequired
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[n.ID] = n
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotificationNotFound
	}

	// Copy to prevent external mutation of stored data.
	out := n
	return &out, nil
}

func (s *MemoryStorage) Update(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[n.ID]
	if !ok {
		return ErrNotificationNotFound
	}
	if stored.UserID != n.UserID {
		return ErrNotificationNotFound
	}

	s.items[n.ID] = n
	return nil
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, id := range s.byUser[userID] {
		n := s.items[id]

		if opts.OnlyUnread && !n.Unread() {
			continue
		}
		if len(opts.Channels) > 0 {
			found := false
			for _, ch := range opts.Channels {
				if n.Channel == ch {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}

		filtered = append(filtered, n)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], nil
}

func (s *MemoryStorage) GetPending(ctx context.Context, channel Channel, limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()

	var due []Notification
	for _, n := range s.items {
		if n.Channel != channel || !n.Due(now) {
			continue
		}
		due = append(due, n)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		n, ok := s.items[id]
		if !ok || n.UserID != userID {
			continue
		}
		if err := n.MarkRead(); err != nil {
			continue // terminal status, leave as is
		}
		s.items[id] = n
	}
	return nil
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[userID] {
		n := s.items[id]
		if !n.Unread() {
			continue
		}
		if err := n.MarkRead(); err != nil {
			continue
		}
		s.items[id] = n
	}
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[userID] {
		if n := s.items[id]; n.Unread() {
			count++
		}
	}
	return count, nil
}
