package source

import "errors"

// Sentinel kinds for upstream source errors.
var (
	ErrFetch      = errors.New("upstream fetch failed")
	ErrDecode     = errors.New("upstream payload malformed")
	ErrInvalidKey = errors.New("invalid view key")
)
