package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// pgErrorClass maps a SQLSTATE code to the store error it represents.
type pgErrorClass struct {
	sentinel error
	describe func(*pgconn.PgError) string
}

// Codes the icon catalog can produce. Everything else passes through as an
// infrastructure failure.
var pgErrorClasses = map[string]pgErrorClass{
	"23505": {store.ErrDuplicate, func(e *pgconn.PgError) string {
		return "unique constraint " + e.ConstraintName
	}},
	"23514": {store.ErrInvalidEntity, func(e *pgconn.PgError) string {
		return "check constraint " + e.ConstraintName
	}},
	"23502": {store.ErrInvalidEntity, func(e *pgconn.PgError) string {
		return "column " + e.ColumnName + " cannot be null"
	}},
	"22001": {store.ErrInvalidEntity, func(e *pgconn.PgError) string {
		return "value too long for column " + e.ColumnName
	}},
	"22P02": {store.ErrInvalidEntity, func(*pgconn.PgError) string {
		return "malformed value"
	}},
}

// MapError translates a database error into the store error taxonomy. The
// original error stays in the message but only the sentinel is wrapped, so
// driver details never become part of the error chain callers inspect.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	class, ok := pgErrorClasses[pgErr.Code]
	if !ok {
		return err
	}
	return fmt.Errorf("%w: %s (SQLSTATE %s)", class.sentinel, class.describe(pgErr), pgErr.Code)
}
