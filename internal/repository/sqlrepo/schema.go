// Package sqlrepo implements the Shelf repositories on SQLite and Postgres
// through sqlx.
//
// Queries are written once with ? placeholders and rebound for the active
// driver. Borrowers live in their own table keyed by (book_id, user_id),
// which makes a duplicate borrow impossible at the storage level.
package sqlrepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		uuid TEXT NOT NULL,
		isbn TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (price >= 0),
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_on TIMESTAMP NOT NULL,
		updated_on TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'guest')),
		created_on TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS book_borrowers (
		book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		seq BIGINT NOT NULL,
		PRIMARY KEY (book_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS book_borrowers_user ON book_borrowers (user_id)`,
}

// Migrate creates the tables if they do not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
