package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/rewrite"
)

// Build validates specs and turns them into rewrites in declaration order.
// All validation errors are reported together.
func Build(specs []ir.RuleSpec) ([]*rewrite.Rewrite, error) {
	if verrs := Validate(specs); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	rules := make([]*rewrite.Rewrite, 0, len(specs))
	for _, spec := range specs {
		r, err := rewrite.FromPatterns(spec.Name, spec.Searcher, spec.Applier)
		if err != nil {
			return nil, fmt.Errorf("build rule %q: %w", spec.Name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}
