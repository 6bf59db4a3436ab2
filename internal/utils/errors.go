package utils

import "errors"

// Common application errors used across services. Handlers translate these
// into HTTP responses; anything unrecognized surfaces as an internal error.
var (
	ErrNotFound           = errors.New("NOT_FOUND")
	ErrInvalidArgument    = errors.New("INVALID_ARGUMENT")
	ErrConflict           = errors.New("CONFLICT")
	ErrBackendUnavailable = errors.New("BACKEND_UNAVAILABLE")
)
