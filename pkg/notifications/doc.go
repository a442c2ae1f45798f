// Package notifications provides the durable side of the notification
// pipeline: the Notification lifecycle model, pluggable storage, and the
// caller-facing Service.
//
// A notification is created pending and moves forward only: pending
// becomes sent on successful delivery, sent becomes read when the user
// reads it, and pending becomes failed (terminal) once delivery retries
// are exhausted. Retry bookkeeping (attempt counter, next-attempt time)
// lives on the record but is owned by the delivery worker in the worker
// package, never by callers.
//
// Three Storage implementations ship with the package:
//
//   - MemoryStorage for development and tests
//   - PGStorage for PostgreSQL via pgx, schema applied with Migrate
//   - RedisStorage for deployments without Postgres
//
// The Service wires storage to an optional best-effort real-time push:
// the record is persisted first, so a dead websocket can never lose a
// notification, only delay it until the user next looks at their feed.
package notifications
