package domain

import (
	"errors"
	"fmt"
)

// Validation error kinds, matched with errors.Is.
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidRating = errors.New("invalid rating")
	ErrInvalidURL    = errors.New("invalid url")
	ErrEmptyUpdate   = errors.New("empty update")
	ErrMalformedBody = errors.New("malformed body")
)

// ValidationError is a client input error. Its message is returned to the caller verbatim.
type ValidationError struct {
	Kind  error
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrMissingField:
		return fmt.Sprintf("'%s' is required", e.Field)
	case ErrInvalidRating:
		return fmt.Sprintf("'rating' must be a number between %d and %d", MinRating, MaxRating)
	case ErrInvalidURL:
		return "'url' must be a valid URL"
	case ErrEmptyUpdate:
		return "Request body must contain either 'title', 'url', 'description' or 'rating'"
	case ErrMalformedBody:
		return "request body must be a JSON object"
	default:
		return e.Kind.Error()
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func missing(field string) error {
	return &ValidationError{Kind: ErrMissingField, Field: field}
}

// MalformedBody reports a request body that is not a JSON object.
func MalformedBody() error {
	return &ValidationError{Kind: ErrMalformedBody}
}
