package shm

import "errors"

// Transient errors: the current frame is dropped and the compositor
// continues (spec.md §7).
var (
	ErrNoFrame               = errors.New("shm: no frame available")
	ErrStaleSession          = errors.New("shm: session changed mid-map, retry")
	ErrSeqlockRetryExceeded  = errors.New("shm: seqlock retry bound exceeded")
)

// Session/process-fatal errors (spec.md §7).
var (
	ErrShmNotAvailable    = errors.New("shm: shared mapping could not be created")
	ErrFenceNotReady      = errors.New("shm: fence value would violate monotonicity")
	ErrInvalidOnWireLayout = errors.New("shm: on-wire layout version mismatch")
)
