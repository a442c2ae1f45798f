package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStorage is a Redis implementation of the Storage interface for
// deployments that run without Postgres. Each notification lives as a
// JSON blob keyed by ID, with per-user and per-channel sorted-set
// indexes ordered by creation time.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a Redis-backed notification storage.
func NewRedisStorage(client *redis.Client) (*RedisStorage, error) {
	if client == nil {
		return nil, ErrStorageNil
	}
	return &RedisStorage{client: client, prefix: "notifykit"}, nil
}

func (s *RedisStorage) itemKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:notif:%s", s.prefix, id)
}

func (s *RedisStorage) userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, userID)
}

func (s *RedisStorage) pendingKey(channel Channel) string {
	return fmt.Sprintf("%s:pending:%s", s.prefix, channel)
}

func (s *RedisStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		return ErrIDRequired
	}
	if n.UserID == "" {
		return ErrUserIDRequired
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}

	score := float64(n.CreatedAt.UnixNano())

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.itemKey(n.ID), raw, 0)
	pipe.ZAdd(ctx, s.userKey(n.UserID), redis.Z{Score: score, Member: n.ID.String()})
	if n.Status == StatusPending {
		pipe.ZAdd(ctx, s.pendingKey(n.Channel), redis.Z{Score: score, Member: n.ID.String()})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	n, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

func (s *RedisStorage) Update(ctx context.Context, n Notification) error {
	stored, err := s.fetch(ctx, n.ID)
	if err != nil {
		return err
	}
	if stored.UserID != n.UserID {
		return ErrNotificationNotFound
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.itemKey(n.ID), raw, 0)
	if n.Status != StatusPending {
		pipe.ZRem(ctx, s.pendingKey(n.Channel), n.ID.String())
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	// Newest first: the user index is scored by creation time.
	ids, err := s.client.ZRevRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var filtered []Notification
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		n, err := s.fetch(ctx, id)
		if err != nil {
			continue // index entry for an expired/removed blob
		}

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

		filtered = append(filtered, *n)
	}

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

func (s *RedisStorage) GetPending(ctx context.Context, channel Channel, limit int) ([]Notification, error) {
	// Oldest first. Backoff is per-item (NextAttemptAt inside the blob),
	// so due-ness is filtered after the index scan.
	ids, err := s.client.ZRange(ctx, s.pendingKey(channel), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	var due []Notification
	for _, raw := range ids {
		if limit > 0 && len(due) >= limit {
			break
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		n, err := s.fetch(ctx, id)
		if err != nil {
			continue
		}
		if !n.Due(now) {
			continue
		}
		due = append(due, *n)
	}

	return due, nil
}

func (s *RedisStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	for _, id := range ids {
		n, err := s.fetch(ctx, id)
		if err != nil || n.UserID != userID {
			continue
		}
		if err := n.MarkRead(); err != nil {
			continue
		}
		if err := s.Update(ctx, *n); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStorage) MarkAllRead(ctx context.Context, userID string) error {
	ids, err := s.client.ZRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}

	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		n, err := s.fetch(ctx, id)
		if err != nil || !n.Unread() {
			continue
		}
		if err := n.MarkRead(); err != nil {
			continue
		}
		if err := s.Update(ctx, *n); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	ids, err := s.client.ZRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		n, err := s.fetch(ctx, id)
		if err != nil {
			continue
		}
		if n.Unread() {
			count++
		}
	}
	return count, nil
}

func (s *RedisStorage) fetch(ctx context.Context, id uuid.UUID) (*Notification, error) {
	raw, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
