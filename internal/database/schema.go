package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the tables the repositories query. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		country    TEXT,
		lat        DOUBLE PRECISION,
		lon        DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS cities_user_name_idx ON cities (user_id, lower(name))`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_user_idx ON chat_messages (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		channel    TEXT NOT NULL,
		recipient  TEXT NOT NULL,
		subject    TEXT NOT NULL DEFAULT '',
		message    TEXT NOT NULL,
		emergency  BOOLEAN NOT NULL DEFAULT FALSE,
		status     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS alerts_user_idx ON alerts (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS feature_flags (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		reason     TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
