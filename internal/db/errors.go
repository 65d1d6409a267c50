package db

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes surfaced by lib/pq.
const (
	PgUniqueViolation   = "23505"
	PgSerializationFail = "40001"
	PgDeadlockDetected  = "40P01"
	PgLockNotAvailable  = "55P03"
	PgQueryCanceled     = "57014" // statement_timeout while waiting on a lock
)

// IsTransient reports whether err is a concurrency conflict that is safe to
// retry from the top of the operation (deadlock, lock wait timeout,
// serialization failure). Business failures are never transient.
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case PgSerializationFail, PgDeadlockDetected, PgLockNotAvailable, PgQueryCanceled:
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation
}
