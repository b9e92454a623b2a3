package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for scoring input. These allow errors.Is/As from callers.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidTrustProfile   = errors.New("invalid trust profile")
	ErrInvalidCandidate      = errors.New("invalid candidate")
	ErrUnknownResponseBucket = errors.New("unknown response bucket")
)

// ValidationError describes which field failed validation and why.
type ValidationError struct {
	Kind   error
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError of the given kind.
func NewValidationError(kind error, field, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Reason)
}

// Unwrap exposes the sentinel kind.
func (e *ValidationError) Unwrap() error { return e.Kind }
