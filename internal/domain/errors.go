package domain

import "errors"

// ErrNotFound is returned when a day or item id does not resolve within the
// plan. The operation that hit it has made no change.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing location name, unparsable date, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an import would replace a plan that already
// has days and the caller did not confirm the overwrite.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")
