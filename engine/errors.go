package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrDocumentNotFound is returned when a document ID does not resolve to
	// an active document of the engine's kind.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmployeeNotFound is returned when an employee ID does not resolve.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEntryNotFound is returned when an acknowledgement is recorded
	// against a ledger entry that does not exist or is soft-deleted.
	ErrEntryNotFound = errors.New("acknowledgement entry not found")

	// ErrInvalidKind is returned when an operation is attempted with a kind
	// that is not a known document kind.
	ErrInvalidKind = errors.New("invalid document kind")

	// ErrEmptyFilter is returned when a bulk ledger mutation is attempted
	// with a filter that would match every entry of a kind.
	ErrEmptyFilter = errors.New("entry filter matches everything")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// StorageError wraps a failure from a store collaborator with the ledger
// operation that hit it, so callers can log which step of a reconciliation
// failed while still unwrapping to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid input to an engine operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// =============================================================================
// ERROR CLASSIFICATION HELPERS
// =============================================================================

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidKind) || errors.Is(err, ErrEmptyFilter)
}

// IsStorage reports whether err originated in a store collaborator.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storagef(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
