// Package postgres provides the production Store backed by a pgx connection
// pool. The pool is configured in main from Config and handed over here;
// sqlx sits on top via pgx's database/sql adapter.
package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/lbianche/schooladmin/internal/store"
)

type Store struct {
	store.BaseStore
}

var _ store.Store = (*Store)(nil)

// New wraps an existing pgx pool. Closing the store closes the pool.
func New(pool *pgxpool.Pool) *Store {
	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	return &Store{store.BaseStore{DB: db}}
}

// NewFromDSN connects directly, for tools that have no pool of their own.
func NewFromDSN(dsn string) (*Store, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Store{store.BaseStore{DB: db}}, nil
}
