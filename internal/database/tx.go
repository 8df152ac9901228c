package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside a transaction, rolling back on error.
func WithTx(db *pgxpool.Pool, ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// WithActor runs fn inside a transaction whose app.user_id setting carries
// the verified actor id. The row-security policies read that setting, so
// every query fn issues is evaluated against the actor's own rows. SET LOCAL
// expires with the transaction; nothing leaks to pooled connections.
func WithActor(db *pgxpool.Pool, ctx context.Context, actorID int64, fn func(tx pgx.Tx) error) error {
	return WithTx(db, ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", fmt.Sprint(actorID)); err != nil {
			return fmt.Errorf("set actor: %w", err)
		}
		return fn(tx)
	})
}
