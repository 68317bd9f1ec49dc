// Package storage persists the resolution history log in a per-repository
// SQLite database under .revlens/.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"revlens/internal/logging"
)

// DB wraps the SQLite connection for the history store.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the database at .revlens/revlens.db under the
// repository root.
func Open(repoRoot string, logger *logging.Logger) (*DB, error) {
	dir := filepath.Join(repoRoot, ".revlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .revlens directory: %w", err)
	}

	dbPath := filepath.Join(dir, "revlens.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on lock
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if err := db.initializeSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("history database ready", logging.Fields{"path": dbPath})
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *DB) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resolution_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider TEXT NOT NULL,
		commit_id TEXT NOT NULL,
		cr_number INTEGER,
		cr_title TEXT,
		cr_url TEXT,
		cr_state TEXT,
		merged_at TEXT,
		error TEXT,
		resolved_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_commit ON resolution_history(provider, commit_id);
	CREATE INDEX IF NOT EXISTS idx_history_resolved_at ON resolution_history(resolved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}
