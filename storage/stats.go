package storage

import (
	"fmt"
)

// DailyStats represents export statistics for a single day
type DailyStats struct {
	Date         string `json:"date"`
	TotalExports int    `json:"totalExports"`
	TotalActions int    `json:"totalActions"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
}

// HotkeyStats represents export statistics grouped by hotkey
type HotkeyStats struct {
	Hotkey         string  `json:"hotkey"`
	TotalExports   int     `json:"totalExports"`
	SuccessCount   int     `json:"successCount"`
	AvgActionCount float64 `json:"avgActionCount"`
}

// OverallStats represents overall export statistics
type OverallStats struct {
	TotalExports   int     `json:"totalExports"`
	TotalActions   int     `json:"totalActions"`
	SuccessCount   int     `json:"successCount"`
	FailureCount   int     `json:"failureCount"`
	AvgActionCount float64 `json:"avgActionCount"`
}

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_exports,
			SUM(action_count) as total_actions,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count
		FROM exports
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalExports, &s.TotalActions, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetHotkeyStats retrieves statistics grouped by hotkey for the last N days
func (db *DB) GetHotkeyStats(days int) ([]HotkeyStats, error) {
	query := `
		SELECT
			hotkey,
			COUNT(*) as total_exports,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			AVG(action_count) as avg_action_count
		FROM exports
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY hotkey
		ORDER BY total_exports DESC, hotkey
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotkey stats: %w", err)
	}
	defer rows.Close()

	var stats []HotkeyStats
	for rows.Next() {
		var s HotkeyStats
		if err := rows.Scan(&s.Hotkey, &s.TotalExports, &s.SuccessCount, &s.AvgActionCount); err != nil {
			return nil, fmt.Errorf("failed to scan hotkey stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_exports,
			COALESCE(SUM(action_count), 0) as total_actions,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(action_count), 0) as avg_action_count
		FROM exports
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalExports,
		&stats.TotalActions,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.AvgActionCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}
