/*
errors.go - Centralized error types for the document store

PURPOSE:
  All docstore errors in one place. Callers branch with errors.Is /
  errors.As; the inventory package wraps these with domain context.

ERROR CATEGORIES:
  1. NotFound     - a Get found no document. A normal result, not a fault.
  2. StorageFault - the durable slot rejected a read or write, or the
                    snapshot could not be encoded/decoded. Always propagated.
  3. Input errors - empty collection names or ids.

There is no ReferenceError here: the store never follows references, so a
dangling location/item/variant id simply resolves to NotFound.
*/
package docstore

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned by Get when no document has the given id.
	ErrNotFound = errors.New("document not found")

	// ErrStorageFault is the root of every persistence-medium failure.
	ErrStorageFault = errors.New("storage fault")

	// ErrInvalidInput is returned for empty collection names or ids.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// StorageError describes a failed load or save against a slot.
type StorageError struct {
	Op      string // "read", "write", "decode", "encode"
	Backend string // slot name, e.g. "sqlite", "file", "redis"
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage fault: %s on %s: %v", e.Op, e.Backend, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageFault, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err means "no such document".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageFault reports whether err came from the persistence medium.
func IsStorageFault(err error) bool {
	return errors.Is(err, ErrStorageFault)
}
