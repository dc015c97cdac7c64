package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// CompileRule parses a CUE value into rule specs.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the rule struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`rule: "comm-add": { searcher: "(+ ?a ?b)", applier: "(+ ?b ?a)" }`)
//	specs, err := CompileRule(v.LookupPath(cue.ParsePath(`rule."comm-add"`)))
//
// A rule with bidirectional: true also yields its reverse, named
// "<name>-rev". Both pattern sources must parse and pass pattern.Validate.
func CompileRule(v cue.Value) ([]ir.RuleSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := ir.RuleSpec{}

	// The name may be quoted in CUE, extract it
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	spec.Searcher, err = parsePatternField(v, "searcher")
	if err != nil {
		return nil, err
	}
	spec.Applier, err = parsePatternField(v, "applier")
	if err != nil {
		return nil, err
	}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		spec.Description, err = descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	specs := []ir.RuleSpec{spec}

	biVal := v.LookupPath(cue.ParsePath("bidirectional"))
	if biVal.Exists() {
		bidirectional, err := biVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if bidirectional {
			specs = append(specs, Reverse(spec))
		}
	}

	return specs, nil
}

// CompileRules compiles every field of the top-level "rule" struct in
// declaration order. A value without a "rule" field yields no rules.
func CompileRules(v cue.Value) ([]ir.RuleSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rulesVal := v.LookupPath(cue.ParsePath("rule"))
	if !rulesVal.Exists() {
		return nil, nil
	}

	iter, err := rulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.RuleSpec
	for iter.Next() {
		compiled, err := CompileRule(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, compiled...)
	}
	return specs, nil
}

// Reverse returns the rule rewriting in the opposite direction.
func Reverse(spec ir.RuleSpec) ir.RuleSpec {
	return ir.RuleSpec{
		Name:        spec.Name + "-rev",
		Description: spec.Description,
		Searcher:    spec.Applier,
		Applier:     spec.Searcher,
	}
}

// parsePatternField reads a required pattern string and checks that it
// parses. The source text is kept verbatim; rendering is left to consumers.
func parsePatternField(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}

	src, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}

	if _, err := pattern.Parse(src); err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid pattern %q: %v", src, err),
			Pos:     fieldVal.Pos(),
		}
	}
	return src, nil
}
