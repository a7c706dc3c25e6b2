package scheduler

import "errors"

// ErrUnknownJob is returned by RunByName for names that were never registered
var ErrUnknownJob = errors.New("unknown job")
