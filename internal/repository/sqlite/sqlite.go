// Package sqlite implements the fleet registry repositories on the embedded
// SQLite store managed by internal/storage.
package sqlite

import (
	"context"
	"database/sql"
)

// Connector hands out one fresh connection per logical operation. The
// *storage.Server satisfies it; tests substitute their own.
type Connector interface {
	Connect(ctx context.Context) (*sql.DB, error)
}

// querier is the statement surface shared by *sql.DB and *sql.Tx, so the
// row-mapping helpers work inside and outside transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)
