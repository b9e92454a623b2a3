package ranking

import (
	"errors"
	"fmt"
)

// Sentinel kinds for ranking errors.
var (
	ErrUnknownPolicy = errors.New("unknown invalid-candidate policy")
)

// CandidateError reports the candidate that failed a ranking under PolicyAbort.
type CandidateError struct {
	CandidateID string
	Index       int
	Err         error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %q at index %d: %v", e.CandidateID, e.Index, e.Err)
}

// Unwrap exposes the underlying validation error.
func (e *CandidateError) Unwrap() error { return e.Err }
