package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS phish_urls (
	id              BIGSERIAL PRIMARY KEY,
	url             TEXT        NOT NULL UNIQUE,
	first_seen      TIMESTAMPTZ NOT NULL,
	last_seen       TIMESTAMPTZ NOT NULL,
	reports_count   INTEGER     NOT NULL DEFAULT 1,
	on_air          BOOLEAN     NOT NULL DEFAULT FALSE,
	checked         BOOLEAN     NOT NULL DEFAULT FALSE,
	last_checked_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS phish_urls_last_seen_idx ON phish_urls (last_seen DESC);
`

// Connect opens a pool and verifies the server is reachable.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the registry table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create registry schema: %w", err)
	}
	return nil
}
