package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type dbTransaction struct {
	tx *gorm.DB

	// nested transactions share the outermost one; only the owner commits
	// or rolls back.
	owner bool
	done  bool
}

// WithDBTransaction begins a database transaction and returns a context whose
// DB() is bound to it. Calling it on a context which already carries an open
// transaction joins that transaction instead of starting a new one.
func WithDBTransaction(ctx context.Context) context.Context {
	if parent, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok && !parent.done {
		return context.WithValue(ctx, dbTransactionKey{}, &dbTransaction{tx: parent.tx})
	}

	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	tx := db.WithContext(ctx).Begin()
	return context.WithValue(ctx, dbTransactionKey{}, &dbTransaction{tx: tx, owner: true})
}

// WithCommitDBTransaction commits the transaction carried by ctx. It returns
// the error of the commit, which is nil for a joined transaction.
func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction)
	if !ok || tx.done {
		return nil
	}

	tx.done = true
	if !tx.owner {
		return nil
	}

	return tx.tx.Commit().Error
}

// WithRollbackDBTransaction rollbacks the transaction carried by ctx if it
// has not been committed yet. It is safe to defer right after
// WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction)
	if !ok || tx.done {
		return
	}

	tx.done = true
	if tx.owner {
		tx.tx.Rollback()
	}
}
