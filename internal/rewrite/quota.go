package rewrite

import (
	"errors"
	"fmt"
)

// quota bounds the number of firings applied in one run.
//
// The pass count already bounds a run, but a single pass over a growing
// graph can fire an unbounded number of times (every new class is a new
// match for an associativity rule). The quota catches that explosion.
//
// A limit of zero or less disables the check.
type quota struct {
	limit   int
	current int
}

// check counts one firing and reports whether the limit is exceeded.
func (q *quota) check(runID string) error {
	if q.limit <= 0 {
		return nil
	}
	q.current++
	if q.current > q.limit {
		return &FiringLimitError{
			RunID:   runID,
			Firings: q.current,
			Limit:   q.limit,
		}
	}
	return nil
}

// FiringLimitError is returned when a run exceeds its firing quota.
// The firing that crossed the limit is not applied.
type FiringLimitError struct {
	RunID   string
	Firings int // attempted firings, including the rejected one
	Limit   int
}

func (e *FiringLimitError) Error() string {
	return fmt.Sprintf("run %s exceeded firing quota: %d firings > %d limit",
		e.RunID, e.Firings, e.Limit)
}

// IsFiringLimitError reports whether err is a FiringLimitError.
// Uses errors.As to handle wrapped errors.
func IsFiringLimitError(err error) bool {
	var fe *FiringLimitError
	return errors.As(err, &fe)
}
