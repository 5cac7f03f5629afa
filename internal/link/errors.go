package link

import "errors"

// Errors returned by Store implementations.
var (
	// ErrNotExists indicates a reference does not resolve to a stored link.
	ErrNotExists = errors.New("link does not exist")

	// ErrCreationRejected indicates the store declined to create or return
	// a link for a (source, target) pair.
	ErrCreationRejected = errors.New("link creation rejected")

	// ErrCapacityExhausted indicates the store reached its configured
	// maximum number of links.
	ErrCapacityExhausted = errors.New("link capacity exhausted")

	// ErrInvalidName indicates an empty leaf name.
	ErrInvalidName = errors.New("invalid leaf name")
)
