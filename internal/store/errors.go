package store

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("conflict")

// ConflictError names the column whose unique constraint was violated.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return ErrConflict.Error()
	}
	return ErrConflict.Error() + ": " + e.Field
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// uniqueViolation maps driver errors for unique constraint failures to a
// ConflictError. fields lists the candidate column names.
func uniqueViolation(err error, fields ...string) (*ConflictError, bool) {
	if err == nil {
		return nil, false
	}

	var detail string
	var pqErr *pq.Error
	var sqliteErr *msqlite.Error
	switch {
	case errors.As(err, &pqErr):
		if pqErr.Code != "23505" {
			return nil, false
		}
		detail = pqErr.Constraint + " " + pqErr.Detail
	case errors.As(err, &sqliteErr):
		code := sqliteErr.Code()
		isUnique := code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3lib.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE"))
		if !isUnique {
			return nil, false
		}
		detail = sqliteErr.Error()
	default:
		return nil, false
	}

	for _, field := range fields {
		if strings.Contains(detail, field) {
			return &ConflictError{Field: field}, true
		}
	}
	return &ConflictError{}, true
}
