package draw

import "errors"

var (
	// ErrDrawNotFound means no draw exists under the requested ID.
	ErrDrawNotFound = errors.New("draw not found")

	// ErrDrawCompleted means the draw has already been executed. The
	// stored results are final; execution never runs twice.
	ErrDrawCompleted = errors.New("draw already completed")

	// ErrTooFewParticipants means the draw has fewer members than the
	// execution policy allows.
	ErrTooFewParticipants = errors.New("draw requires at least 3 participants")

	// ErrPersistence wraps a failed attempt to store match results. The
	// transaction was rolled back, the draw status is unchanged, and the
	// caller may safely retry the execution from scratch.
	ErrPersistence = errors.New("failed to persist match results")
)
