// Package repository provides persistence implementations for users,
// blood-pressure records and sensor samples, backed by PostgreSQL or MongoDB.
package repository

import (
	"errors"
	"fmt"
)

// StorageError reports a failed persistence operation: a constraint
// violation, a connectivity fault or a malformed query.
type StorageError struct {
	// Op names the failed operation, e.g. "create user".
	Op string
	// Err is the underlying driver error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// nonNil turns a nil slice into an empty one so list fields are never stored as NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
