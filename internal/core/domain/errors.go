package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a document format with no text path.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrAuthRequired indicates no access token is configured for the document store.
	ErrAuthRequired = errors.New("authentication required")

	// Pipeline Errors.

	// ErrTraversal indicates a folder listing failed (network, auth or invalid id).
	ErrTraversal = errors.New("traversal failed")

	// ErrFetch indicates a document's content could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrConversion indicates a binary document could not be converted to text.
	ErrConversion = errors.New("conversion failed")

	// ErrMerge indicates a record could not be written to the registry.
	ErrMerge = errors.New("merge failed")
)

// FatalTraversalError reports a failure of the master folder listing.
// It aborts the entire sync; nothing merged before it is rolled back.
type FatalTraversalError struct {
	FolderID string
	Err      error
}

func (e *FatalTraversalError) Error() string {
	return fmt.Sprintf("list master folder %s: %v", e.FolderID, e.Err)
}

// Unwrap exposes both the traversal sentinel and the underlying cause.
func (e *FatalTraversalError) Unwrap() []error {
	return []error{ErrTraversal, e.Err}
}

// IsFatal reports whether err aborted a whole sync pass.
func IsFatal(err error) bool {
	var fatal *FatalTraversalError
	return errors.As(err, &fatal)
}
