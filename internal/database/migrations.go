package database

import (
	"context"
	"database/sql"
)

// runMigrations creates the database schema
func runMigrations(ctx context.Context, db *sql.DB) error {
	// Each board is stored as one JSON document
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			document TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Listing is ordered by name
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_boards_name
		ON boards(name, id)
	`)
	return err
}
