package referral

import (
	"errors"
	"fmt"
)

// Kind categorizes creation failures.
type Kind string

const (
	// KindValidation indicates malformed input; the ledger was not touched.
	KindValidation Kind = "validation"

	// KindConflict indicates the account id already exists.
	KindConflict Kind = "conflict"

	// KindStorage indicates any other ledger failure.
	KindStorage Kind = "storage"
)

// NoIndex marks an Error that is not tied to a batch item.
const NoIndex = -1

// Error is returned by every Service operation.
//
// Message is safe to show to callers. Err carries the underlying cause and
// may contain storage details; log it, don't return it to clients.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Index is the failing batch item, or NoIndex.
	Index int

	// Message is a caller-facing description.
	Message string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Index != NoIndex {
		prefix = fmt.Sprintf("item %d: %s", e.Index, e.Kind)
	}
	if e.Err != nil && e.Kind != KindValidation {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict returns true if err is a duplicate-id conflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsStorage returns true if err is a storage failure.
func IsStorage(err error) bool { return KindOf(err) == KindStorage }

func newValidationError(index int, err error) *Error {
	return &Error{Kind: KindValidation, Index: index, Message: err.Error(), Err: err}
}

func newConflictError(index int, id int64, err error) *Error {
	return &Error{Kind: KindConflict, Index: index, Message: fmt.Sprintf("account %d already exists", id), Err: err}
}

func newStorageError(index int, err error) *Error {
	return &Error{Kind: KindStorage, Index: index, Message: "storage failure", Err: err}
}
