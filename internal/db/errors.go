package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Typed store errors. Handlers map these to HTTP statuses; services branch on
// them to implement find-or-create and catch-conflict semantics.
var (
	// ErrNotFound means the referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a create/update hit a uniqueness index. The losing
	// writer is expected to re-fetch and use the existing row.
	ErrConflict = errors.New("already exists")
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// mapWriteErr converts driver-level errors to the store's typed errors.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// mapReadErr converts pgx.ErrNoRows to ErrNotFound.
func mapReadErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
