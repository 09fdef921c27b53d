package db

import (
	"context"
	"database/sql"
)

// Database is the subset of database/sql the DAOs need. Satisfied by *sql.DB
// and *sql.Tx.
type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DatabaseGetter returns a database handle. Used to defer retrieval until
// first use.
type DatabaseGetter func() Database

func defaultGetter() Database {
	if defaultDB == nil {
		return nil
	}
	return defaultDB
}
