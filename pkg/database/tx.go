package database

import (
	"context"
	"fmt"
)

// WithinTx runs fn inside a database transaction. The transaction is stored
// in the context passed to fn, so repository calls made with that context
// join it automatically. The transaction commits when fn returns nil and
// rolls back on any error. If the context already carries a transaction, fn
// joins it and commit/rollback stay with the outermost caller.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(SetTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
