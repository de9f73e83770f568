// internal/history/mysql.go
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

type mysqlDialect struct{}

func (mysqlDialect) open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL connection string is required")
	}

	// created_at is scanned into time.Time, which needs parseTime.
	if !strings.Contains(dsn, "parseTime") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (mysqlDialect) createTable(db *sql.DB, table string) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+`
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		url TEXT NOT NULL,
		format VARCHAR(8) NOT NULL,
		selector VARCHAR(512) NOT NULL DEFAULT '',
		width INT NOT NULL,
		height INT NOT NULL,
		full_page BOOLEAN NOT NULL DEFAULT FALSE,
		mobile BOOLEAN NOT NULL DEFAULT FALSE,
		status INT NOT NULL,
		kind VARCHAR(64) NOT NULL DEFAULT '',
		bytes BIGINT NOT NULL DEFAULT 0,
		elapsed_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, table)

	_, err := db.Exec(query)
	return err
}

func (mysqlDialect) insertQuery(table string) string {
	return fmt.Sprintf("INSERT INTO `%s`"+`
		(url, format, selector, width, height, full_page, mobile, status, kind, bytes, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
}

func (mysqlDialect) recentQuery(table string) string {
	return fmt.Sprintf("SELECT url, format, selector, width, height, full_page, mobile, status, kind, bytes, elapsed_ms, created_at"+`
		FROM `+"`%s`"+` ORDER BY id DESC LIMIT ?`, table)
}
