package store

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicateID is returned when an insert collides with an existing account id.
	ErrDuplicateID = errors.New("account id already exists")

	// ErrNotFound is returned when no account has the requested id.
	ErrNotFound = errors.New("account not found")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isDuplicateKey reports whether err is a primary-key or unique constraint
// violation from either supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return true
		}
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}
