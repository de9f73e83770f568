// internal/history/history.go
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pagesnap/pagesnap/internal/capture"
	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// Store persists capture audit entries in a SQL backend. It records
// request metadata and outcome only; image bytes are never stored.
// Store implements capture.Recorder.
type Store struct {
	db      *sql.DB
	dialect dialect
	table   string
	log     utils.Logger
}

// dialect abstracts the driver-specific pieces: connecting, the table
// DDL and the placeholder style.
type dialect interface {
	open(dsn string) (*sql.DB, error)
	createTable(db *sql.DB, table string) error
	insertQuery(table string) string
	recentQuery(table string) string
}

// New opens the audit store configured by cfg. A disabled
// configuration yields a nil store, which callers treat as "no
// auditing".
func New(cfg config.HistoryConfig, logger utils.Logger) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = utils.NewLogger()
	}

	var d dialect
	switch cfg.Driver {
	case "sqlite":
		d = sqliteDialect{}
	case "postgres":
		d = postgresDialect{}
	case "mysql":
		d = mysqlDialect{}
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}

	db, err := d.open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history store: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "captures"
	}
	if err := d.createTable(db, table); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"driver": cfg.Driver,
		"table":  table,
	}).Info("capture history enabled")

	return &Store{db: db, dialect: d, table: table, log: logger}, nil
}

// Record inserts one audit entry.
func (s *Store) Record(ctx context.Context, e capture.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, s.dialect.insertQuery(s.table),
		e.URL,
		e.Format,
		e.Selector,
		e.Width,
		e.Height,
		e.FullPage,
		e.Mobile,
		e.Status,
		e.Kind,
		e.Bytes,
		e.Elapsed.Milliseconds(),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]capture.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.recentQuery(s.table), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []capture.AuditEntry
	for rows.Next() {
		var (
			e         capture.AuditEntry
			elapsedMs int64
			createdAt time.Time
		)
		err := rows.Scan(
			&e.URL,
			&e.Format,
			&e.Selector,
			&e.Width,
			&e.Height,
			&e.FullPage,
			&e.Mobile,
			&e.Status,
			&e.Kind,
			&e.Bytes,
			&elapsedMs,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		e.CreatedAt = createdAt
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
