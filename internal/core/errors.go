package core

import "errors"

// ErrValidation is the sentinel matched by every input validation failure.
var ErrValidation = errors.New("validation failed")

// ErrEmptyResponse is wrapped by generators whose model answered without
// usable text.
var ErrEmptyResponse = errors.New("empty response")

// ValidationError reports a required field that was missing or blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "Missing required field: " + e.Field
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func missing(field string) error {
	return &ValidationError{Field: field}
}
