package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("unauthenticated: no user identity on request")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStaleAssignment    = errors.New("assignment does not exist for this user")
	ErrInvalidAnswer      = errors.New("annotation answer is invalid")
	ErrUnknownDataset     = errors.New("unknown dataset: must be validation or complete")
	ErrUnknownSchema      = errors.New("unknown annotation schema version")
	ErrTooFewUsers        = errors.New("distribution needs at least two users")
	ErrDuplicateUser      = errors.New("user email listed more than once")
	ErrInvalidUser        = errors.New("user email and password must not be empty")
	ErrRateLimited        = errors.New("too many submissions, slow down")
	ErrStoreUnavailable   = errors.New("annotation store unavailable")
)
