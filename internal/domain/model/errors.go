package model

import (
	"errors"
)

// Sentinel kinds for record validation errors.
var (
	// ErrMalformed marks records the upstream returned in an unusable shape.
	ErrMalformed = errors.New("malformed upstream record")
	// ErrInvariant marks records violating the pick-count invariants.
	ErrInvariant = errors.New("pick summary invariant violation")
)
