package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// Validation error codes (E100-E199)
const (
	ErrRuleNameEmpty   = "E101" // rule name is required
	ErrDuplicateRule   = "E102" // two rules share a name
	ErrInvalidSearcher = "E103" // searcher does not parse or violates pattern invariants
	ErrInvalidApplier  = "E104" // applier does not parse or violates pattern invariants
	ErrUnboundWildcard = "E105" // applier wildcard not bound by the searcher
	ErrIdentityRule    = "E106" // searcher and applier are the same pattern
	ErrBareWildcard    = "E107" // searcher is a bare wildcard
)

// ValidationError represents a rule validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Rule    string `json:"rule,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("[%s] rule %q: %s: %s", e.Code, e.Rule, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks an ordered rule set.
// Returns all errors found (does not fail-fast).
func Validate(specs []ir.RuleSpec) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)

	for i, spec := range specs {
		// E101: name required
		if strings.TrimSpace(spec.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].name", i),
				Message: "rule name is required and must be non-empty",
				Code:    ErrRuleNameEmpty,
			})
		} else if names[spec.Name] {
			// E102: duplicate name
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].name", i),
				Message: fmt.Sprintf("duplicate rule name: %q", spec.Name),
				Code:    ErrDuplicateRule,
				Rule:    spec.Name,
			})
		}
		names[spec.Name] = true

		errs = append(errs, validateRule(spec)...)
	}

	return errs
}

// validateRule checks a single rule's patterns and their wildcards.
func validateRule(spec ir.RuleSpec) []ValidationError {
	var errs []ValidationError

	// E103: searcher must parse
	searcher, err := pattern.Parse(spec.Searcher)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "searcher",
			Message: err.Error(),
			Code:    ErrInvalidSearcher,
			Rule:    spec.Name,
		})
	}

	// E104: applier must parse
	applier, err := pattern.Parse(spec.Applier)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "applier",
			Message: err.Error(),
			Code:    ErrInvalidApplier,
			Rule:    spec.Name,
		})
	}

	if searcher == nil || applier == nil {
		return errs
	}

	// E107: a bare wildcard searcher matches every class
	if _, ok := searcher.(pattern.Wildcard); ok {
		errs = append(errs, ValidationError{
			Field:   "searcher",
			Message: fmt.Sprintf("searcher %s is a bare wildcard and would match every class", searcher),
			Code:    ErrBareWildcard,
			Rule:    spec.Name,
		})
	}

	// E106: identity rules never change the graph
	if searcher.String() == applier.String() {
		errs = append(errs, ValidationError{
			Field:   "applier",
			Message: fmt.Sprintf("applier is identical to the searcher %s", searcher),
			Code:    ErrIdentityRule,
			Rule:    spec.Name,
		})
	}

	// Names carry their kind ("?x" vs "?xs..."), so a name match is enough.
	bound := make(map[pattern.Var]bool)
	for _, w := range pattern.Wildcards(searcher) {
		bound[w.Name] = true
	}
	for _, w := range pattern.Wildcards(applier) {
		// E105: applier wildcard must be bound
		if !bound[w.Name] {
			errs = append(errs, ValidationError{
				Field:   "applier",
				Message: fmt.Sprintf("wildcard %s is not bound by the searcher", w.Name),
				Code:    ErrUnboundWildcard,
				Rule:    spec.Name,
			})
		}
	}

	return errs
}
