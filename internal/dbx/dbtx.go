// Package dbx provides a minimal database abstraction shared by SQL-backed
// components: an interface (DBTX) implemented by both *sql.DB and *sql.Tx.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the store layer. Both *sql.DB
// and *sql.Tx satisfy this interface, so callers can run store operations
// inside an existing transaction if they need to.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
