package scheduler

import "errors"

var (
	// ErrInvalidReference rejects a submission before any state mutation.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrLoadTimeout marks a load that exceeded the configured timeout.
	// Timeouts count as failures, not cancellations.
	ErrLoadTimeout = errors.New("load timeout")

	// ErrLoadFailure wraps an error reported by the loader.
	ErrLoadFailure = errors.New("load failure")

	// ErrInstantiation marks a resolution that succeeded but whose view
	// could not be built, so callers can tell it apart from a fetch
	// failure.
	ErrInstantiation = errors.New("failed to create view instance")
)
