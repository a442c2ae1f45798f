package notifications

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGStorage is a PostgreSQL implementation of the Storage interface
// backed by a pgx connection pool.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed notification storage.
func NewPGStorage(pool *pgxpool.Pool) (*PGStorage, error) {
	if pool == nil {
		return nil, ErrStorageNil
	}
	return &PGStorage{pool: pool}, nil
}

// Migrate applies the notifications schema using goose with the
// migrations embedded in the package. Bridges the pgx pool to the
// database/sql interface goose expects.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply notifications migrations: %w", err)
	}
	return nil
}

const notificationColumns = `id, user_id, type, channel, status, title, body, action_ref, sender_id,
	attempts, max_attempts, next_attempt_at, created_at, sent_at, read_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Channel, &n.Status, &n.Title, &n.Body,
		&n.ActionRef, &n.SenderID, &n.Attempts, &n.MaxAttempts,
		&n.NextAttemptAt, &n.CreatedAt, &n.SentAt, &n.ReadAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (s *PGStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		return ErrIDRequired
	}
	if n.UserID == "" {
		return ErrUserIDRequired
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		n.ID, n.UserID, n.Type, n.Channel, n.Status, n.Title, n.Body,
		n.ActionRef, n.SenderID, n.Attempts, n.MaxAttempts,
		n.NextAttemptAt, n.CreatedAt, n.SentAt, n.ReadAt,
	)
	return err
}

func (s *PGStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanNotification(row)
}

func (s *PGStorage) Update(ctx context.Context, n Notification) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = $3, attempts = $4, next_attempt_at = $5, sent_at = $6, read_at = $7
		WHERE id = $1 AND user_id = $2`,
		n.ID, n.UserID, n.Status, n.Attempts, n.NextAttemptAt, n.SentAt, n.ReadAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *PGStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`)
	args := []any{userID}

	if opts.OnlyUnread {
		query.WriteString(` AND status NOT IN ('read', 'failed')`)
	}
	if len(opts.Channels) > 0 {
		args = append(args, opts.Channels)
		query.WriteString(fmt.Sprintf(` AND channel = ANY($%d)`, len(args)))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query.WriteString(fmt.Sprintf(` AND created_at >= $%d`, len(args)))
	}

	query.WriteString(` ORDER BY created_at DESC`)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query.WriteString(fmt.Sprintf(` OFFSET $%d`, len(args)))
	}

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (s *PGStorage) GetPending(ctx context.Context, channel Channel, limit int) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE channel = $1
		  AND status = 'pending'
		  AND (next_attempt_at IS NULL OR next_attempt_at <= now())
		ORDER BY created_at ASC
		LIMIT $2`,
		channel, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (s *PGStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'read', read_at = now()
		WHERE user_id = $1 AND id = ANY($2) AND status IN ('pending', 'sent')`,
		userID, ids,
	)
	return err
}

func (s *PGStorage) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'read', read_at = now()
		WHERE user_id = $1 AND status IN ('pending', 'sent')`,
		userID,
	)
	return err
}

func (s *PGStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM notifications
		WHERE user_id = $1 AND status NOT IN ('read', 'failed')`,
		userID,
	).Scan(&count)
	return count, err
}

func collectNotifications(rows pgx.Rows) ([]Notification, error) {
	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
