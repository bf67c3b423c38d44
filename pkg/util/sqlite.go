// Package util holds small pieces of infrastructure shared across the
// runtime that don't belong to any single protocol layer.
package util

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// modernc.org/sqlite registers the "sqlite" driver with database/sql;
	// it is a cgo-free pure Go implementation, which is why the driver
	// name below is "sqlite" rather than the more common "sqlite3".
	_ "modernc.org/sqlite"

	"github.com/richard-senior/mcp/internal/logger"
)

// SQLiteClient wraps a single *sql.DB handle to an on-disk sqlite file
// under ~/.mcp, used as the durable backing store for resource
// subscriptions (so a server restart doesn't silently forget who
// subscribed to what).
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLite opens (creating if absent) the sqlite database at dbLocation.
// An empty dbLocation defaults to ~/.mcp/mcp.db.
func NewSQLite(dbLocation string) (*SQLiteClient, error) {
	if dbLocation == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dir := filepath.Join(homeDir, ".mcp")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		dbLocation = filepath.Join(dir, "mcp.db")
	}

	db, err := sql.Open("sqlite", dbLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	return &SQLiteClient{db: db}, nil
}

// Execute runs a statement with no expected result rows (DDL, insert,
// delete).
func (c *SQLiteClient) Execute(query string, args ...any) error {
	if _, err := c.db.Exec(query, args...); err != nil {
		return fmt.Errorf("sqlite exec failed: %w", err)
	}
	return nil
}

// Query runs query and hands every row to scan until rows are exhausted or
// scan returns an error.
func (c *SQLiteClient) Query(query string, scan func(*sql.Rows) error, args ...any) error {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("sqlite query failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *SQLiteClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Must logs err at FATAL level and exits the process; used for the handful of startup-time sqlite calls
// (schema creation) where there's nothing sensible to do but fail fast.
func Must(err error) {
	if err != nil {
		logger.Fatal("sqlite: unrecoverable error", err)
	}
}
