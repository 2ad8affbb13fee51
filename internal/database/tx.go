package database

import (
	"context"
	"database/sql"
)

// WithinTx runs fn inside a transaction. The transaction is committed only
// when fn returns nil; every other exit path, including a panic in fn, rolls
// it back.
func (db *DB) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
