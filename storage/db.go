package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the export history database in dir and initializes the schema
func Open(dir string) (*DB, error) {
	dbPath := filepath.Join(dir, "ahkgen.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the web server read history while the CLI records an export
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		hotkey TEXT NOT NULL,
		window_title TEXT NOT NULL,
		action_count INTEGER NOT NULL,
		output_path TEXT NOT NULL,
		script_text TEXT NOT NULL,
		source TEXT NOT NULL,

		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_exports_timestamp ON exports(timestamp);
	CREATE INDEX IF NOT EXISTS idx_exports_hotkey ON exports(hotkey);
	`

	_, err := db.conn.Exec(schema)
	return err
}
