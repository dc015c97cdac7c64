package rewrite

import (
	"errors"
	"fmt"
)

// RuleError reports a rewrite rule that cannot be built.
type RuleError struct {
	// Code identifies the error category.
	Code RuleErrorCode

	// Message is a human-readable description.
	Message string

	// Rule is the name of the offending rule.
	Rule string

	// Var is the wildcard involved, if any.
	Var string
}

// RuleErrorCode categorizes rule errors.
type RuleErrorCode string

const (
	// ErrCodeUnboundVar indicates the applier uses a wildcard the searcher never binds.
	ErrCodeUnboundVar RuleErrorCode = "UNBOUND_VAR"

	// ErrCodeKindMismatch indicates searcher and applier disagree on a wildcard's kind.
	ErrCodeKindMismatch RuleErrorCode = "KIND_MISMATCH"

	// ErrCodeMissingPart indicates a rule without a searcher or applier.
	ErrCodeMissingPart RuleErrorCode = "MISSING_PART"
)

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("%s: %s (rule=%s, var=%s)", e.Code, e.Message, e.Rule, e.Var)
	}
	return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
}

// IsUnboundVarError returns true if err is a RuleError for an applier
// wildcard the searcher does not bind. Uses errors.As to handle wrapped errors.
func IsUnboundVarError(err error) bool {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnboundVar
	}
	return false
}

// IsKindMismatchError returns true if err is a RuleError for a wildcard
// used with two kinds across searcher and applier.
func IsKindMismatchError(err error) bool {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeKindMismatch
	}
	return false
}

// FiringLogError wraps a failure of the persistent firing log.
type FiringLogError struct {
	RunID string
	Rule  string
	Err   error
}

func (e *FiringLogError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("firing log (run=%s, rule=%s): %v", e.RunID, e.Rule, e.Err)
	}
	return fmt.Sprintf("firing log (run=%s): %v", e.RunID, e.Err)
}

func (e *FiringLogError) Unwrap() error { return e.Err }
