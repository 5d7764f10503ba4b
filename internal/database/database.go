package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// NewSQLXSqliteDB opens the sqlite question store at the given path and
// verifies the connection.
func NewSQLXSqliteDB(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}

	// sqlite handles one writer at a time; keep the pool small
	db.SetMaxOpenConns(1)

	return db, nil
}
