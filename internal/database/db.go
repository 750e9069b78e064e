package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mantavyam/jacob-web/internal/models"
)

// MapPostgresError converts driver errors into model sentinels. Anything it
// does not recognise is returned unchanged.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502", // not_null_violation
			"23514", // check_violation
			"22001": // string_data_right_truncation
			return fmt.Errorf("%w: %s", models.ErrConstraint, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return models.ErrNotFound
		case "22P02", "22007", "22008": // invalid text, datetime format, datetime overflow
			return models.ErrInvalidArgument
		}
	}

	return err
}

// WithTransaction runs fn inside a transaction, committing when fn returns nil
// and rolling back on error or panic.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}
