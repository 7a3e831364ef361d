package sqlite

import (
	"context"
	"fmt"
)

// migrations run in order inside one transaction. The schema is small enough
// that a fixed statement list beats a versioned migration directory; every
// statement is safe to re-run on an already migrated database.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		color       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		capacity    INTEGER CHECK (capacity IS NULL OR capacity > 0),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                      TEXT PRIMARY KEY,
		user_name               TEXT NOT NULL,
		user_email              TEXT NOT NULL,
		area                    TEXT NOT NULL DEFAULT '',
		date                    TEXT NOT NULL,
		start_minutes           INTEGER NOT NULL,
		end_minutes             INTEGER NOT NULL CHECK (end_minutes > start_minutes),
		room_id                 TEXT NOT NULL REFERENCES rooms(id),
		attendees               INTEGER NOT NULL DEFAULT 1 CHECK (attendees >= 1),
		cancel_token            TEXT NOT NULL UNIQUE,
		cancel_token_expires_at TEXT NOT NULL,
		created_at              TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room_date ON bookings(room_id, date)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active        INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL
	)`,
}

// Migrate applies the schema statements.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
