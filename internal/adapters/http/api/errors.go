package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest        = errors.New("bad request")
	ErrBodyTooLarge      = errors.New("request body too large")
	ErrTooManyCandidates = errors.New("too many candidates")
	ErrBackpressure      = errors.New("backpressure")
	ErrNotFound          = errors.New("not found")
	ErrTimeout           = errors.New("ranking timed out")
	ErrInternal          = errors.New("internal error")
)

// KindError tags an error with the operation and API kind that produced it.
// errors.Is matches both the kind and the wrapped cause.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	if e.Kind == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *KindError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind tags err with kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// Wrap annotates err with op; nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Op: op, Err: err}
}
