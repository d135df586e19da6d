package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// inTx runs `fn` in a transaction. Any failure rolls everything back; errors raised after the
// transaction started are reported as core.TransactionError unless `fn` already classified them.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewTransactionError(errors.Wrap(err, "beginning transaction"))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		if core.IsTransactionFailed(err) || core.IsNotFound(err) {
			return err
		}
		return core.NewTransactionError(err)
	}
	if err = tx.Commit(); err != nil {
		return core.NewTransactionError(errors.Wrap(err, "committing transaction"))
	}
	return nil
}
