package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
)

// BaseStore implements Store on top of sqlx for any SQL dialect close enough
// to Postgres. Queries are written with '?' placeholders and rebound to the
// driver's bindvar syntax, so the same code serves both the pgx-backed
// production store and the SQLite store used in tests.
type BaseStore struct {
	DB *sqlx.DB

	// TranslateSQL optionally rewrites migration DDL for the dialect.
	TranslateSQL func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies the .sql files of dir in lexical order.
func (s *BaseStore) ApplyMigrations(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		ddl := string(content)
		if s.TranslateSQL != nil {
			ddl = s.TranslateSQL(ddl)
		}

		if _, err := s.DB.Exec(ddl); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

// rowsAffected extracts the affected-row count, normalizing driver errors.
func rowsAffected(res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
