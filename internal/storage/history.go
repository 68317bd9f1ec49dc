package storage

import (
	"database/sql"
	"fmt"
	"time"

	"revlens/internal/hosting"
	"revlens/internal/logging"
)

// HistoryEntry is one settled resolution as stored in the log.
type HistoryEntry struct {
	ID         int64
	Provider   string
	CommitID   string
	Number     int
	Title      string
	URL        string
	State      string
	MergedAt   *time.Time
	Error      string
	ResolvedAt time.Time
}

// History records settled resolutions. It implements resolve.Recorder.
type History struct {
	db     *DB
	logger *logging.Logger
}

// NewHistory creates a history log on the given database.
func NewHistory(db *DB) *History {
	return &History{db: db, logger: db.logger}
}

// RecordResolution appends one settled resolution. Failures to write are
// logged, not propagated: history is an observability aid and must never
// fail a resolution.
func (h *History) RecordResolution(providerID, commitID string, cr *hosting.ChangeRequest, resolveErr error) {
	var (
		number   int
		title    string
		url      string
		state    string
		mergedAt sql.NullString
		errMsg   string
	)
	if cr != nil {
		number = cr.Number
		title = cr.Title
		url = cr.URL
		state = string(cr.State)
		if cr.MergedAt != nil {
			mergedAt = sql.NullString{String: cr.MergedAt.UTC().Format(time.RFC3339), Valid: true}
		}
	}
	if resolveErr != nil {
		errMsg = resolveErr.Error()
	}

	_, err := h.db.conn.Exec(`
		INSERT INTO resolution_history (provider, commit_id, cr_number, cr_title, cr_url, cr_state, merged_at, error, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, providerID, commitID, number, title, url, state, mergedAt, errMsg, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		h.logger.Warn("failed to record resolution", logging.Fields{
			"provider": providerID,
			"commit":   commitID,
			"error":    err.Error(),
		})
	}
}

// Recent returns the latest entries, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.conn.Query(`
		SELECT id, provider, commit_id, cr_number, cr_title, cr_url, cr_state, merged_at, error, resolved_at
		FROM resolution_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e          HistoryEntry
			mergedAt   sql.NullString
			resolvedAt string
		)
		if err := rows.Scan(&e.ID, &e.Provider, &e.CommitID, &e.Number, &e.Title, &e.URL, &e.State, &mergedAt, &e.Error, &resolvedAt); err != nil {
			return nil, fmt.Errorf("history scan failed: %w", err)
		}
		if mergedAt.Valid {
			if t, err := time.Parse(time.RFC3339, mergedAt.String); err == nil {
				e.MergedAt = &t
			}
		}
		if t, err := time.Parse(time.RFC3339, resolvedAt); err == nil {
			e.ResolvedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune removes entries older than the retention window.
func (h *History) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := h.db.conn.Exec(`DELETE FROM resolution_history WHERE resolved_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history prune failed: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
