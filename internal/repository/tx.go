package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx DBTX) error) error
}

// Beginner is satisfied by *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgTxRunner commits when fn returns nil and rolls back otherwise.
type PgTxRunner struct {
	db Beginner
}

// NewTxRunner creates a PgTxRunner over a pool.
func NewTxRunner(db Beginner) *PgTxRunner {
	return &PgTxRunner{db: db}
}

// InTx implements TxRunner.
func (r *PgTxRunner) InTx(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
