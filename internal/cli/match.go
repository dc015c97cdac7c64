package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eqsat/internal/egraph"
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// MatchResult holds every match of a pattern in a graph.
type MatchResult struct {
	Pattern   string       `json:"pattern"`
	Wildcards []string     `json:"wildcards"`
	Classes   int          `json:"classes"`
	Matches   []ClassMatch `json:"matches"`
	Total     int          `json:"total"`
}

// ClassMatch is one binding table found in a class.
type ClassMatch struct {
	Class    ir.ClassID              `json:"class"`
	Bindings map[string][]ir.ClassID `json:"bindings"`
	text     string
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <pattern> <term>...",
		Short: "Match a pattern against a graph built from terms",
		Long: `Build an e-graph from the given terms and print every binding table
the pattern produces, class by class in id order.

Example:
  eqsat match "(+ ?a ?b)" "(+ x y)" "(+ y (+ x z))"`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runMatch(opts *RootOptions, src string, terms []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	p, err := pattern.Parse(src)
	if err == nil {
		err = pattern.Validate(p)
	}
	if err != nil {
		return outputMatchError(formatter, ErrCodeInvalidQuery, fmt.Sprintf("invalid pattern %q: %v", src, err))
	}

	g, _, err := buildGraph(terms)
	if err != nil {
		return outputMatchError(formatter, ErrCodeInvalidTerm, err.Error())
	}
	formatter.VerboseLog("Built graph with %d classes and %d nodes", g.NumClasses(), g.NumNodes())

	result := &MatchResult{
		Pattern:   p.String(),
		Wildcards: []string{},
		Classes:   g.NumClasses(),
		Matches:   []ClassMatch{},
	}
	for _, w := range pattern.Wildcards(p) {
		result.Wildcards = append(result.Wildcards, string(w.Name))
	}

	for _, m := range pattern.Search(p, g) {
		for _, b := range m.Bindings {
			result.Matches = append(result.Matches, ClassMatch{
				Class:    m.Class,
				Bindings: bindingsMap(b),
				text:     b.String(),
			})
		}
	}
	result.Total = len(result.Matches)

	return outputMatchSuccess(formatter, result)
}

// buildGraph adds each term to a fresh graph and returns the class of each.
func buildGraph(terms []string) (*egraph.EGraph, []ir.ClassID, error) {
	g := egraph.New()
	ids := make([]ir.ClassID, len(terms))
	for i, src := range terms {
		t, err := pattern.ParseTerm(src)
		if err != nil {
			if pattern.IsUnresolvedWildcard(err) {
				return nil, nil, fmt.Errorf("term %q must be ground: %w", src, err)
			}
			return nil, nil, fmt.Errorf("invalid term %q: %w", src, err)
		}
		ids[i] = g.AddTerm(t)
	}
	return g, ids, nil
}

// bindingsMap converts a binding table for JSON output. Empty tails are
// rendered as [] rather than null.
func bindingsMap(b pattern.WildMap) map[string][]ir.ClassID {
	m := b.Map()
	for k, v := range m {
		if v == nil {
			m[k] = []ir.ClassID{}
		}
	}
	return m
}

func outputMatchSuccess(formatter *OutputFormatter, result *MatchResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Pattern: %s\n\n", result.Pattern)
	if result.Total == 0 {
		fmt.Fprintf(w, "No matches in %d class(es)\n", result.Classes)
		return nil
	}
	for _, m := range result.Matches {
		fmt.Fprintf(w, "  class %d: %s\n", m.Class, m.text)
	}
	fmt.Fprintf(w, "\nTotal: %d match(es) in %d class(es)\n", result.Total, result.Classes)
	return nil
}

func outputMatchError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
