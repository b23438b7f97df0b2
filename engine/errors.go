package engine

import "errors"

// Error categories surfaced to the HTTP layer. Handlers map these with
// errors.Is; everything else is treated as an internal error.
var (
	// ErrValidation marks malformed or missing caller input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown story id.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict marks an action submitted against a story that is
	// no longer active.
	ErrStateConflict = errors.New("story is not active")

	// ErrGeneration marks any model-call or schema failure during the
	// synchronous part of a turn. The turn aborts with nothing persisted.
	ErrGeneration = errors.New("generation failed")
)
