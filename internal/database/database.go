// Package database owns the SQLite connection and the embedded schema
// migrations.
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// Open opens the SQLite database at dbPath, verifies the connection and
// enables foreign key enforcement, which SQLite leaves off per connection.
// All stored timestamps are UTC text, so no session-level time handling is
// needed.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// HealthCheck reports whether the database connection is usable.
func HealthCheck(db *sql.DB) error {
	return db.Ping()
}
