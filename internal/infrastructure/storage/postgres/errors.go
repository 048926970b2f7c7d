package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"snackexport/internal/core/apperror"
)

// PostgreSQL error codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// MapError converts constraint violations into application errors.
// Other errors are returned unchanged.
func MapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewConflict(entity+" already exists").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewValidation("referenced record does not exist").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName)
	case pgCheckViolation:
		return apperror.NewValidation("value violates a database constraint").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName)
	}
	return err
}

// IsRetryable reports whether the transaction failed on a serialization
// conflict or deadlock and may be run again.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
