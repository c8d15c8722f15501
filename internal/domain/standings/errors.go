package standings

import (
	"errors"
)

// Sentinel kinds for standings errors.
var (
	ErrUserNotFound = errors.New("user not found in standings")
)
