package models

import "errors"

var (
	// ErrNotFound is returned for unknown case, notification or user ids
	ErrNotFound = errors.New("resource not found")
	// ErrValidationFailed is returned when caller input is rejected
	ErrValidationFailed = errors.New("validation failed")
	// ErrUnauthorized is returned when credentials or the asserted role do not match
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicate is returned by stores when a unique key is already taken
	ErrDuplicate = errors.New("duplicate key")
)

// ValidationError represents a field-level validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is match ErrValidationFailed
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}
