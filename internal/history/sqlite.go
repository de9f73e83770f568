// internal/history/sqlite.go
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type sqliteDialect struct{}

func (sqliteDialect) open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}

	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

func (sqliteDialect) createTable(db *sql.DB, table string) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		format TEXT NOT NULL,
		selector TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		full_page BOOLEAN NOT NULL DEFAULT 0,
		mobile BOOLEAN NOT NULL DEFAULT 0,
		status INTEGER NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		bytes INTEGER NOT NULL DEFAULT 0,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`, table)

	_, err := db.Exec(query)
	return err
}

func (sqliteDialect) insertQuery(table string) string {
	return fmt.Sprintf(`INSERT INTO %q
		(url, format, selector, width, height, full_page, mobile, status, kind, bytes, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
}

func (sqliteDialect) recentQuery(table string) string {
	return fmt.Sprintf(`SELECT url, format, selector, width, height, full_page, mobile, status, kind, bytes, elapsed_ms, created_at
		FROM %q ORDER BY id DESC LIMIT ?`, table)
}
