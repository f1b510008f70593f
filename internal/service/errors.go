package service

import "errors"

var (
	// ErrInvalidInput rejects a submission before any side effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueueUnavailable means the publish failed and the job was not
	// submitted.
	ErrQueueUnavailable = errors.New("work queue unavailable")

	// ErrStoreUnavailable means the result store could not be reached.
	ErrStoreUnavailable = errors.New("result store unavailable")

	// ErrNotFound covers ids that never existed and ids whose records
	// expired; callers cannot tell the difference.
	ErrNotFound = errors.New("analysis not found")
)
