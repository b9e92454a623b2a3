package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/skillmatch/pkg/logger"
)

// Policy decides what happens to candidates with invalid records.
type Policy string

// Invalid-candidate policies.
const (
	PolicyExclude Policy = "exclude" // drop the candidate and report a rejection
	PolicyAbort   Policy = "abort"   // fail the whole ranking call
)

// ParsePolicy parses a policy name; empty means PolicyExclude.
func ParsePolicy(raw string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PolicyExclude, nil
	case PolicyExclude, PolicyAbort:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWorkers sets the maximum number of candidates scored concurrently.
func WithWorkers(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithParallelThreshold sets the candidate count from which scoring fans out.
// Smaller lists are scored on the calling goroutine.
func WithParallelThreshold(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.parallelThreshold = n
		}
	}
}

// WithPolicy sets the invalid-candidate policy.
func WithPolicy(p Policy) Option {
	return func(r *Ranker) {
		if p == PolicyExclude || p == PolicyAbort {
			r.policy = p
		}
	}
}

// WithLogger sets the logger used for warnings and rejections.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.log = l
		}
	}
}
