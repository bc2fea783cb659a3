package storage

import (
	"errors"
	"fmt"
)

// ErrUnknownReference is returned by the DB variants when the reference is
// tagged for a different backend.
var ErrUnknownReference = errors.New("does not understand the remote file reference")

// StorageError wraps any failure produced by a storage backend: transport
// errors, non-2xx responses, body read failures, reference tag mismatches.
// Callers match the kind with errors.As and reach the cause via Unwrap.
type StorageError struct {
	Op  string // operation that failed, e.g. "upload a.txt"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageError wraps err into a StorageError with the given operation tag
func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
