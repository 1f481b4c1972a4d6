package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrNoRateFound indicates a single rate source answered but had no rate for
// the requested currency. The fallback chain treats this as a recoverable
// non-match and moves on to the next source.
var ErrNoRateFound = errors.New("no rate found")

// ErrNoRateAvailable indicates the entire rate source chain was exhausted,
// including the last-known-good cache.
var ErrNoRateAvailable = errors.New("no rate available from any source")

// ErrInvalidRate indicates a conversion was attempted with a zero, negative
// or missing exchange rate.
var ErrInvalidRate = errors.New("invalid exchange rate")
