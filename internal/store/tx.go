package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tx is one unit of work against the ledger. Statements issued on a Tx see
// each other's effects before commit.
type Tx struct {
	statements
	tx *sqlx.Tx
}

// InTx runs fn inside a transaction and commits if fn returns nil.
// Any error from fn (or a panic) rolls back every statement fn issued.
func (s *Store) InTx(ctx context.Context, fn func(Statements) error) error {
	return s.WithTx(ctx, func(tx *Tx) error { return fn(tx) })
}

// WithTx is InTx with the concrete transaction type.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{statements: statements{q: tx}, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
