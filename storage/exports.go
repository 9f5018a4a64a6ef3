package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrExportNotFound = errors.New("export not found")

// Export records one script generation attempt
type Export struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"runId"`
	Timestamp    time.Time `json:"timestamp"`
	Hotkey       string    `json:"hotkey"`
	WindowTitle  string    `json:"windowTitle"`
	ActionCount  int       `json:"actionCount"`
	OutputPath   string    `json:"outputPath"`
	ScriptText   string    `json:"scriptText"`
	Source       string    `json:"source"` // web, cli or tray
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// timestampLayout matches SQLite's CURRENT_TIMESTAMP so DATE() and the
// stats windows keep working on stored values
const timestampLayout = "2006-01-02 15:04:05"

// SaveExport saves an export to the database, assigning ID, RunID and
// Timestamp when unset
func (db *DB) SaveExport(e *Export) error {
	if e.RunID == "" {
		e.RunID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC().Truncate(time.Second)

	query := `
		INSERT INTO exports (
			run_id, timestamp, hotkey, window_title, action_count, output_path,
			script_text, source, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		e.RunID, e.Timestamp.Format(timestampLayout), e.Hotkey, e.WindowTitle, e.ActionCount, e.OutputPath,
		e.ScriptText, e.Source, e.Success, e.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	e.ID = id
	return nil
}

// GetExports retrieves exports, newest first, with pagination
func (db *DB) GetExports(limit, offset int) ([]Export, error) {
	query := `
		SELECT
			id, run_id, timestamp, hotkey, window_title, action_count,
			output_path, script_text, source, success, error_message
		FROM exports
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var e Export
		var errorMessage sql.NullString

		err := rows.Scan(
			&e.ID, &e.RunID, &e.Timestamp, &e.Hotkey, &e.WindowTitle, &e.ActionCount,
			&e.OutputPath, &e.ScriptText, &e.Source, &e.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}

		if errorMessage.Valid {
			e.ErrorMessage = errorMessage.String
		}

		exports = append(exports, e)
	}

	return exports, rows.Err()
}

// DeleteExport deletes an export by ID
func (db *DB) DeleteExport(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM exports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrExportNotFound
	}

	return nil
}

// GetExportCount returns the total number of exports
func (db *DB) GetExportCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM exports").Scan(&count)
	return count, err
}
