package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/eqsat/internal/egraph"
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// lookupClass finds the canonical class of a ground term.
func lookupClass(g *egraph.EGraph, src string) (ir.ClassID, error) {
	term, err := pattern.ParseTerm(src)
	if err != nil {
		return 0, err
	}
	id, ok := g.LookupTerm(term)
	if !ok {
		return 0, fmt.Errorf("term %s is not in the graph", term)
	}
	return g.Find(id), nil
}

// assertEquivalent checks that every term is present and in one class.
func assertEquivalent(g *egraph.EGraph, assertion Assertion) error {
	first, err := lookupClass(g, assertion.Terms[0])
	if err != nil {
		return fmt.Errorf("equivalent: %w", err)
	}
	for _, src := range assertion.Terms[1:] {
		id, err := lookupClass(g, src)
		if err != nil {
			return fmt.Errorf("equivalent: %w", err)
		}
		if id != first {
			return &AssertionError{
				Type:     AssertEquivalent,
				Expected: fmt.Sprintf("%s and %s in one class", assertion.Terms[0], src),
				Actual:   fmt.Sprintf("classes %d and %d", first, id),
			}
		}
	}
	return nil
}

// assertNotEquivalent checks that both terms are present and apart.
// A missing term is an error, not a pass.
func assertNotEquivalent(g *egraph.EGraph, assertion Assertion) error {
	a, err := lookupClass(g, assertion.Terms[0])
	if err != nil {
		return fmt.Errorf("not_equivalent: %w", err)
	}
	b, err := lookupClass(g, assertion.Terms[1])
	if err != nil {
		return fmt.Errorf("not_equivalent: %w", err)
	}
	if a == b {
		return &AssertionError{
			Type:     AssertNotEquivalent,
			Expected: fmt.Sprintf("%s and %s in different classes", assertion.Terms[0], assertion.Terms[1]),
			Actual:   fmt.Sprintf("both in class %d", a),
		}
	}
	return nil
}

// assertMatchCount counts binding tables over every class of g.
func assertMatchCount(g *egraph.EGraph, assertion Assertion) error {
	p, err := pattern.Parse(assertion.Pattern)
	if err != nil {
		return fmt.Errorf("match_count: %w", err)
	}
	if err := pattern.Validate(p); err != nil {
		return fmt.Errorf("match_count: %w", err)
	}

	count := 0
	for _, m := range pattern.Search(p, g) {
		count += len(m.Bindings)
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertMatchCount,
			Expected: fmt.Sprintf("%d binding tables for %s", assertion.Count, p),
			Actual:   fmt.Sprintf("%d", count),
		}
	}
	return nil
}

func assertClassCount(g *egraph.EGraph, assertion Assertion) error {
	if n := g.NumClasses(); n != assertion.Count {
		return &AssertionError{
			Type:     AssertClassCount,
			Expected: fmt.Sprintf("%d classes", assertion.Count),
			Actual:   fmt.Sprintf("%d classes", n),
		}
	}
	return nil
}

func assertFireCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Rule == assertion.Rule {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertFireCount,
			Expected: fmt.Sprintf("rule %s fired %d times", assertion.Rule, assertion.Count),
			Actual:   fmt.Sprintf("fired %d times", count),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the final graph and
// the result's trace. Returns a message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, g *egraph.EGraph) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEquivalent:
			err = assertEquivalent(g, assertion)
		case AssertNotEquivalent:
			err = assertNotEquivalent(g, assertion)
		case AssertMatchCount:
			err = assertMatchCount(g, assertion)
		case AssertClassCount:
			err = assertClassCount(g, assertion)
		case AssertFireCount:
			err = assertFireCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
