// Package sqlite provides a Store backed by SQLite. It exists for tests and
// for single-user trial runs; the SQL in store.BaseStore is shared with the
// Postgres implementation, only the migration DDL needs translating.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lbianche/schooladmin/internal/store"
)

type Store struct {
	store.BaseStore
}

var _ store.Store = (*Store)(nil)

func New(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// An in-memory database exists per connection; without this every
	// pooled connection would see a different empty database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{store.BaseStore{
		DB:           db,
		TranslateSQL: translateToSQLite,
	}}, nil
}

// translateToSQLite converts the Postgres migration DDL to SQLite dialect.
func translateToSQLite(ddl string) string {
	replacements := map[string]string{
		"UUID":        "TEXT",
		"TIMESTAMPTZ": "DATETIME",
		"now()":       "CURRENT_TIMESTAMP",
	}
	result := ddl
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}
