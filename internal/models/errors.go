package models

import "errors"

// Failure taxonomy shared across the pipeline. Callers classify with
// errors.Is; everything else is a generic failure.
var (
	// ErrValidation rejects bad input (file type, size, malformed request)
	// before any state changes.
	ErrValidation = errors.New("validation failed")

	// ErrTimeout marks a pipeline stage that exceeded its budget. Partial
	// artifacts have been cleaned up; the operation is retryable.
	ErrTimeout = errors.New("processing timed out")

	// ErrBackendUnavailable marks a missing or erroring embedding/generation
	// provider. The core degrades to mock/stub behavior instead of failing.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNotFound marks an unknown document or chunk id.
	ErrNotFound = errors.New("not found")

	// ErrCorruptIndex marks inconsistent persisted index artifacts. Fatal at
	// startup for that index; never silently reset to empty.
	ErrCorruptIndex = errors.New("corrupt index")
)
