package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrQueueFull reports that the batch queue cannot admit more work.
	ErrQueueFull = errors.New("batch queue full")

	// ErrBatchTooLarge reports a batch request above the configured view limit.
	ErrBatchTooLarge = errors.New("batch too large")
)
