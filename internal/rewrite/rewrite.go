package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// Graph is the e-graph surface the driver needs: matching, insertion,
// merging and congruence repair. *egraph.EGraph implements it.
type Graph interface {
	pattern.MutableGraph
	Find(id ir.ClassID) ir.ClassID
	Union(a, b ir.ClassID) (ir.ClassID, bool)
	Rebuild() int
}

// Rewrite is a named rule: everything the searcher matches is equivalent to
// what the applier builds from the same bindings.
type Rewrite struct {
	Name     string
	Searcher pattern.Searcher
	Applier  pattern.Applier
}

// wildcarder is implemented by pattern.Compiled.
type wildcarder interface {
	Wildcards() []pattern.Wildcard
}

// New builds a rewrite. When both sides expose their wildcards, every
// applier wildcard must be bound by the searcher with the same kind.
func New(name string, searcher pattern.Searcher, applier pattern.Applier) (*Rewrite, error) {
	if searcher == nil || applier == nil {
		return nil, &RuleError{Code: ErrCodeMissingPart, Message: "rule needs both a searcher and an applier", Rule: name}
	}

	s, sok := searcher.(wildcarder)
	a, aok := applier.(wildcarder)
	if sok && aok {
		bound := make(map[pattern.Var]pattern.Kind)
		for _, w := range s.Wildcards() {
			bound[w.Name] = w.Kind
		}
		for _, w := range a.Wildcards() {
			kind, ok := bound[w.Name]
			if !ok {
				return nil, &RuleError{
					Code:    ErrCodeUnboundVar,
					Message: "applier uses a wildcard the searcher does not bind",
					Rule:    name,
					Var:     string(w.Name),
				}
			}
			if kind != w.Kind {
				return nil, &RuleError{
					Code:    ErrCodeKindMismatch,
					Message: fmt.Sprintf("wildcard is %s in the searcher but %s in the applier", kind, w.Kind),
					Rule:    name,
					Var:     string(w.Name),
				}
			}
		}
	}

	return &Rewrite{Name: name, Searcher: searcher, Applier: applier}, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, searcher pattern.Searcher, applier pattern.Applier) *Rewrite {
	r, err := New(name, searcher, applier)
	if err != nil {
		panic(err)
	}
	return r
}

// FromPatterns builds a rewrite from two pattern sources.
func FromPatterns(name, searcher, applier string) (*Rewrite, error) {
	sp, err := pattern.Parse(searcher)
	if err != nil {
		return nil, fmt.Errorf("rule %s: searcher: %w", name, err)
	}
	ap, err := pattern.Parse(applier)
	if err != nil {
		return nil, fmt.Errorf("rule %s: applier: %w", name, err)
	}
	sc, err := pattern.Compile(sp)
	if err != nil {
		return nil, fmt.Errorf("rule %s: searcher: %w", name, err)
	}
	ac, err := pattern.Compile(ap)
	if err != nil {
		return nil, fmt.Errorf("rule %s: applier: %w", name, err)
	}
	return New(name, sc, ac)
}

// Spec returns the textual form of the rule.
func (r *Rewrite) Spec() ir.RuleSpec {
	return ir.RuleSpec{
		Name:     r.Name,
		Searcher: fmt.Sprint(r.Searcher),
		Applier:  fmt.Sprint(r.Applier),
	}
}

// Search runs the searcher over every class of g.
func (r *Rewrite) Search(g pattern.Graph) []pattern.SearchMatches {
	return r.Searcher.Search(g)
}

// Apply instantiates the applier for every binding table of every match
// and unions the result with the matched class. A table whose instantiation
// does not yield exactly one id is not unioned.
//
// It returns the ids whose union changed the graph. The graph must be
// rebuilt afterwards before the next search.
func (r *Rewrite) Apply(g Graph, matches []pattern.SearchMatches) []ir.ClassID {
	var applied []ir.ClassID
	for _, m := range matches {
		for _, bindings := range m.Bindings {
			if id, ok := r.applyOne(g, m.Class, bindings); ok {
				applied = append(applied, id)
			}
		}
	}
	return applied
}

// applyOne returns the instantiated id and whether unioning it changed g.
func (r *Rewrite) applyOne(g Graph, class ir.ClassID, bindings pattern.WildMap) (ir.ClassID, bool) {
	ids := r.Applier.ApplyOne(g, class, bindings)
	if len(ids) != 1 {
		slog.Debug("applier did not yield a single class",
			"rule", r.Name,
			"class", class,
			"ids", len(ids),
		)
		return 0, false
	}
	_, changed := g.Union(ids[0], class)
	return ids[0], changed
}
