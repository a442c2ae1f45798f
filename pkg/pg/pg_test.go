package pg_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty connection string", func(t *testing.T) {
		t.Parallel()

		_, err := pg.Connect(context.Background(), pg.Config{})
		assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
	})

	t.Run("malformed connection string", func(t *testing.T) {
		t.Parallel()

		_, err := pg.Connect(context.Background(), pg.Config{
			ConnectionString: "postgres://bad host:not-a-port/db",
			RetryAttempts:    1,
			RetryInterval:    time.Millisecond,
		})
		assert.ErrorIs(t, err, pg.ErrFailedToParseConfig)
	})
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(errors.Join(errors.New("wrapped"), pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}
