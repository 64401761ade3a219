package main

import (
	"context"
	"database/sql"
	"time"

	"medregistry/internal/doctors"
	dErrors "medregistry/pkg/domain-errors"
	txcontext "medregistry/pkg/platform/tx"
)

const defaultCommitTimeout = 10 * time.Second

// doctorsPostgresTx carries the four-record commit in one SQL transaction.
// The transaction rides in the context, so the same PostgresStore instance
// joins it for every statement fn issues.
type doctorsPostgresTx struct {
	db      *sql.DB
	store   *doctors.PostgresStore
	timeout time.Duration
}

func newDoctorsPostgresTx(db *sql.DB) *doctorsPostgresTx {
	return &doctorsPostgresTx{db: db, store: doctors.NewPostgres(db)}
}

func (t *doctorsPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store doctors.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultCommitTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.store); err != nil {
		return err
	}
	return tx.Commit()
}
