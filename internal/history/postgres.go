// internal/history/postgres.go
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type postgresDialect struct{}

func (postgresDialect) open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("PostgreSQL connection string is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (postgresDialect) createTable(db *sql.DB, table string) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		format TEXT NOT NULL,
		selector TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		full_page BOOLEAN NOT NULL DEFAULT FALSE,
		mobile BOOLEAN NOT NULL DEFAULT FALSE,
		status INTEGER NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		bytes BIGINT NOT NULL DEFAULT 0,
		elapsed_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`, table)

	_, err := db.Exec(query)
	return err
}

func (postgresDialect) insertQuery(table string) string {
	return fmt.Sprintf(`INSERT INTO %q
		(url, format, selector, width, height, full_page, mobile, status, kind, bytes, elapsed_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, table)
}

func (postgresDialect) recentQuery(table string) string {
	return fmt.Sprintf(`SELECT url, format, selector, width, height, full_page, mobile, status, kind, bytes, elapsed_ms, created_at
		FROM %q ORDER BY id DESC LIMIT $1`, table)
}
