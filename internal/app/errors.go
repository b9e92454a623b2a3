package service

import "errors"

// ErrNotStarted is returned by job operations before Start.
var ErrNotStarted = errors.New("service not started")
