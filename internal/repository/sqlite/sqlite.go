// Package sqlite implements the repository interfaces on SQLite — the
// durable store. Data survives restarts and this backend alone serves the
// aggregation queries the reporting engine needs.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary
// builds without CGo and cross-compiles cleanly.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
//
// The Ping acts as the reachability probe: a bad path or permissions
// problem surfaces here, at startup, so the selector can fall back.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own database, so
	// in-memory mode must stay on a single connection.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS issues (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL,
			category         TEXT NOT NULL,
			location         TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'Open',
			reporter_name    TEXT NOT NULL,
			reporter_email   TEXT NOT NULL DEFAULT '',
			reporter_user_id TEXT NOT NULL DEFAULT '',
			support_count    INTEGER NOT NULL DEFAULT 0,
			resolved_at      DATETIME,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_issues_status_created ON issues(status, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_issues_category ON issues(category);
	`)
	if err != nil {
		return fmt.Errorf("creating issues table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS issue_supporters (
			issue_id TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
			user_id  TEXT NOT NULL,
			PRIMARY KEY (issue_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating issue_supporters table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS issue_updates (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			issue_id   TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
			message    TEXT NOT NULL,
			status     TEXT NOT NULL,
			updated_by TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_issue_updates_issue ON issue_updates(issue_id);
	`)
	if err != nil {
		return fmt.Errorf("creating issue_updates table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS donations (
			id            TEXT PRIMARY KEY,
			donor_name    TEXT NOT NULL,
			donor_email   TEXT NOT NULL DEFAULT '',
			donor_user_id TEXT NOT NULL DEFAULT '',
			amount        REAL NOT NULL,
			currency      TEXT NOT NULL DEFAULT 'usd',
			message       TEXT NOT NULL DEFAULT '',
			is_anonymous  INTEGER NOT NULL DEFAULT 0,
			status        TEXT NOT NULL DEFAULT 'pending',
			related_issue TEXT NOT NULL DEFAULT '',
			payment_ref   TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_donations_status_created ON donations(status, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating donations table: %w", err)
	}

	return nil
}
