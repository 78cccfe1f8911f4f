package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Execer is the query surface shared by DB and Tx. Repositories resolve their
// executor per call so that a transaction carried on the context is joined
// transparently.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// TxFromContext returns the open transaction carried on the context, if any.
func TxFromContext(ctx context.Context) (Tx, bool) {
	tx, ok := ctx.Value(txKey).(Tx)
	if !ok || tx == nil || !tx.IsOpen() {
		return nil, false
	}
	status, ok := ctx.Value(txStatusKey).(string)
	if !ok || status != "open" {
		return nil, false
	}
	return tx, true
}

// Resolve returns the context transaction when one is open, the database
// otherwise.
func Resolve(ctx context.Context, db DB) Execer {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
