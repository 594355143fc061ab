package domain

import "errors"

// ErrNotFound is returned when the requested tag does not exist, has been
// soft-deleted, or has no text in the requested language.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (malformed text,
// client-generated id, unsupported query).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicate is returned when an id or a language slot is already taken.
// Handlers should map this to HTTP 409 Conflict.
var ErrDuplicate = errors.New("duplicate")

// ErrInternal marks a backing store failure that happened after validation
// passed. The underlying cause is wrapped alongside it.
var ErrInternal = errors.New("internal error")
