package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound reports a lookup that matched no row.
var ErrNotFound = errors.New("not found")

// ConstraintViolationError wraps a PostgreSQL integrity constraint
// violation (SQLSTATE class 23) with the table and constraint involved.
type ConstraintViolationError struct {
	Table      string
	Constraint string
	Err        *pgconn.PgError
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation on %s (%s): %s", e.Table, e.Constraint, e.Err.Message)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

// wrapError normalizes pgx errors: no-row lookups become ErrNotFound and
// integrity violations become *ConstraintViolationError. Everything else
// passes through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
		return &ConstraintViolationError{
			Table:      pgErr.TableName,
			Constraint: pgErr.ConstraintName,
			Err:        pgErr,
		}
	}
	return err
}
