package cycle

import "errors"

// Sentinel errors for the cycle package.
// Use errors.Is to check: errors.Is(err, cycle.ErrValidation)
var (
	ErrValidation    = errors.New("cycle: invalid input")
	ErrConfiguration = errors.New("cycle: configuration error")
	ErrNotFound      = errors.New("cycle: not found")
	ErrPersistence   = errors.New("cycle: persistence failure")
)
