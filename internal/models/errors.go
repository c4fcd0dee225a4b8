package models

import "errors"

// Sentinel domain errors. Handlers map these onto HTTP statuses; lower
// layers wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrInsufficientLimit = errors.New("insufficient available limit")
	ErrExceedsLimit      = errors.New("amount exceeds available limit")
	ErrInvalidLimit      = errors.New("invalid credit limit")
)
