package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the read surface both pgxpool.Pool and pgx.Tx satisfy.
// lets the readers run inside or outside a snapshot.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// snapshotOptions pins every query of one user read to the same database snapshot.
var snapshotOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// ReadSnapshot runs fn inside a read-only repeatable read transaction.
// the transaction is always rolled back; nothing is ever written.
func ReadSnapshot(ctx context.Context, pool *pgxpool.Pool, fn func(q Querier) error) error {
	tx, err := pool.BeginTx(ctx, snapshotOptions)
	if err != nil {
		return fmt.Errorf("beginning read snapshot: %w", err)
	}
	// pgx returns nil if already closed
	defer tx.Rollback(ctx)

	return fn(tx)
}
