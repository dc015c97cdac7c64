package testutil

import (
	"testing"

	"github.com/roach88/eqsat/internal/egraph"
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// MustGraph builds an e-graph from s-expression terms and returns it with
// the class id of each term, in argument order.
func MustGraph(t testing.TB, terms ...string) (*egraph.EGraph, []ir.ClassID) {
	t.Helper()
	g := egraph.New()
	ids := make([]ir.ClassID, len(terms))
	for i, src := range terms {
		ids[i] = MustAddTerm(t, g, src)
	}
	return g, ids
}

// MustAddTerm parses src as a ground term and adds it to g.
func MustAddTerm(t testing.TB, g *egraph.EGraph, src string) ir.ClassID {
	t.Helper()
	term, err := pattern.ParseTerm(src)
	if err != nil {
		t.Fatalf("parse term %q: %v", src, err)
	}
	return g.AddTerm(term)
}

// MustClass looks up the class holding the ground term src.
func MustClass(t testing.TB, g *egraph.EGraph, src string) ir.ClassID {
	t.Helper()
	term, err := pattern.ParseTerm(src)
	if err != nil {
		t.Fatalf("parse term %q: %v", src, err)
	}
	id, ok := g.LookupTerm(term)
	if !ok {
		t.Fatalf("term %s not in graph", src)
	}
	return g.Find(id)
}
