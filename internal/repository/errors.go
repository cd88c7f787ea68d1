package repository

import (
	"errors"
	"fmt"

	"pos-inventory/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// IsConflict reports whether err is a serialization failure or a deadlock.
func IsConflict(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

// TranslateConflict wraps err with model.ErrTransactionConflict when the
// database aborted the transaction because of concurrent writes.
func TranslateConflict(err error) error {
	if err == nil || !IsConflict(err) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrTransactionConflict, err)
}
