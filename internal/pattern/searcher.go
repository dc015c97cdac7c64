package pattern

import (
	"log/slog"

	"github.com/roach88/eqsat/internal/ir"
)

// SearchMatches holds every binding table found for one class.
// It owns its data and stays valid after the graph is mutated, although the
// ids it holds may stop being canonical.
type SearchMatches struct {
	Class    ir.ClassID
	Bindings []WildMap
}

// Searcher finds matches in a graph. It is the read phase of a rewrite.
type Searcher interface {
	Search(g Graph) []SearchMatches
	SearchClass(g Graph, class ir.ClassID) (SearchMatches, bool)
}

// Applier rewrites one match. It is the write phase of a rewrite. The
// returned ids are candidates for the driver to union with class.
type Applier interface {
	ApplyOne(g MutableGraph, class ir.ClassID, bindings WildMap) []ir.ClassID
}

// Search matches p against every class of g in the graph's class order and
// keeps the classes with at least one binding table.
func Search(p Pattern, g Graph) []SearchMatches {
	var out []SearchMatches
	for _, id := range g.ClassIDs() {
		if m, ok := SearchClass(p, g, id); ok {
			out = append(out, m)
		}
	}
	return out
}

// SearchClass matches p against a single class.
func SearchClass(p Pattern, g Graph, class ir.ClassID) (SearchMatches, bool) {
	bindings := Match(p, g, class)
	if len(bindings) == 0 {
		return SearchMatches{}, false
	}
	slog.Debug("pattern matched class",
		"pattern", p,
		"class", class,
		"bindings", len(bindings),
	)
	return SearchMatches{Class: class, Bindings: bindings}, true
}

// Compiled is a validated pattern usable as both Searcher and Applier.
type Compiled struct {
	root      Pattern
	wildcards []Wildcard
}

var (
	_ Searcher = (*Compiled)(nil)
	_ Applier  = (*Compiled)(nil)
)

// Compile validates p and wraps it.
func Compile(p Pattern) (*Compiled, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	return &Compiled{root: p, wildcards: Wildcards(p)}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(p Pattern) *Compiled {
	c, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return c
}

// Pattern returns the wrapped pattern.
func (c *Compiled) Pattern() Pattern { return c.root }

// Wildcards returns the distinct wildcards in first-occurrence order.
func (c *Compiled) Wildcards() []Wildcard {
	return append([]Wildcard(nil), c.wildcards...)
}

func (c *Compiled) String() string { return c.root.String() }

// Search implements Searcher.
func (c *Compiled) Search(g Graph) []SearchMatches {
	return Search(c.root, g)
}

// SearchClass implements Searcher.
func (c *Compiled) SearchClass(g Graph, class ir.ClassID) (SearchMatches, bool) {
	return SearchClass(c.root, g, class)
}

// ApplyOne implements Applier by instantiating the pattern. The matched
// class is not used: the driver unions it with the result.
func (c *Compiled) ApplyOne(g MutableGraph, _ ir.ClassID, bindings WildMap) []ir.ClassID {
	return Instantiate(c.root, g, bindings)
}
