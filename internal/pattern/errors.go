package pattern

import (
	"errors"
	"fmt"
)

// UnresolvedWildcardError is returned by ToTerm when the pattern still
// contains a wildcard.
type UnresolvedWildcardError struct {
	Name Var
}

func (e *UnresolvedWildcardError) Error() string {
	return fmt.Sprintf("found wildcard %s instead of a ground term", e.Name)
}

// IsUnresolvedWildcard reports whether err is an UnresolvedWildcardError.
// Uses errors.As to handle wrapped errors.
func IsUnresolvedWildcard(err error) bool {
	var ue *UnresolvedWildcardError
	return errors.As(err, &ue)
}

// InvalidPatternError reports a pattern that violates a structural
// invariant the matcher relies on.
type InvalidPatternError struct {
	Pattern string // rendered pattern
	Message string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %s: %s", e.Pattern, e.Message)
}

// IsInvalidPattern reports whether err is an InvalidPatternError.
func IsInvalidPattern(err error) bool {
	var ie *InvalidPatternError
	return errors.As(err, &ie)
}
