package pool

import "errors"

var (
	// ErrInvalidInput rejects empty or malformed campaign/user identifiers
	// before any store access happens.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransientStore marks a temporarily unreachable store. Callers may
	// retry the whole Claim/ReplaceCodes call with backoff.
	ErrTransientStore = errors.New("store temporarily unavailable")

	// ErrContentionExceeded means the internal CAS retry budget ran out.
	// Callers should retry after a longer backoff rather than loop tightly.
	ErrContentionExceeded = errors.New("contention retry budget exhausted")

	// ErrCorruptState marks a stored document that failed invariant
	// validation. Non-retryable; surfaced for operator intervention, never
	// auto-repaired.
	ErrCorruptState = errors.New("stored pool state is corrupt")
)
