package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// trip, day, activity, version, confirmation or inspiration does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. bad day number, missing activity id on update).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when the document exists but belongs to a
// different owner. It is kept distinct from ErrNotFound so handlers can map
// it to HTTP 403.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict is returned by a repo Update whose base version is stale.
// The caller should reload the document and retry.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("version conflict")

// ErrDuplicate is returned when a confirmation or inspiration duplicates one
// the owner has already saved. Use DuplicateError to recover the matching ids.
var ErrDuplicate = errors.New("duplicate")

// DuplicateError carries the ids of the existing records a new one duplicates.
// It unwraps to ErrDuplicate.
type DuplicateError struct {
	IDs []string
}

func (e *DuplicateError) Error() string {
	return "duplicate"
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}
