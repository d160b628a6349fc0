package store

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	// ErrDuplicateRecord means a weekly statistic already exists for the
	// (observer, week, month, year) key.
	ErrDuplicateRecord = errors.New("statistic already recorded for this observer and week")

	// ErrInvalidInput means a creation-time validation failed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means no record exists for the given id.
	ErrNotFound = errors.New("record not found")

	// ErrMissingReason means an evaluation edit was attempted without a
	// non-empty reason.
	ErrMissingReason = errors.New("edit reason is required")
)
