package pattern

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqsat/internal/egraph"
	"github.com/roach88/eqsat/internal/ir"
)

func TestSearch_CommutedPlus(t *testing.T) {
	g := egraph.New()
	x := g.AddTerm(ir.T("x"))
	y := g.AddTerm(ir.T("y"))
	plus := g.Add(ir.NewENode("+", x, y))
	z := g.AddTerm(ir.T("z"))
	w := g.AddTerm(ir.T("w"))
	plus2 := g.Add(ir.NewENode("+", z, w))

	g.Union(plus, plus2)
	g.Rebuild()

	searcher := MustCompile(N("+", W("?a"), W("?b")))
	matches := searcher.Search(g)

	require.Len(t, matches, 1, "only the merged class matches")
	assert.Equal(t, g.Find(plus), matches[0].Class)

	want := []WildMap{
		NewWildMap(single("?a", x), single("?b", y)),
		NewWildMap(single("?a", z), single("?b", w)),
	}
	assert.ElementsMatch(t, tableStrings(want), tableStrings(matches[0].Bindings))

	applier := MustCompile(N("+", W("?b"), W("?a")))
	var applied []ir.ClassID
	for _, m := range matches[0].Bindings {
		applied = append(applied, applier.ApplyOne(g, matches[0].Class, m)...)
	}

	require.Len(t, applied, 2)
	assert.NotEqual(t, applied[0], applied[1])
	for _, id := range applied {
		assert.False(t, g.Equiv(id, plus), "commuted terms are new until the driver unions them")
	}

	yx, ok := g.LookupTerm(ir.T("+", ir.T("y"), ir.T("x")))
	require.True(t, ok)
	wz, ok := g.LookupTerm(ir.T("+", ir.T("w"), ir.T("z")))
	require.True(t, ok)
	assert.ElementsMatch(t, []ir.ClassID{yx, wz}, applied)
}

func TestMatch_Wildcard(t *testing.T) {
	f := &fakeGraph{}
	x := f.class(leaf("x"))

	got := Match(W("?a"), f, x)

	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(NewWildMap(single("?a", x))))
}

func TestMatch_LeafYieldsOneEmptyTable(t *testing.T) {
	f := &fakeGraph{}
	dup := f.class(leaf("x"), leaf("x"), leaf("y"))
	other := f.class(leaf("y"))
	interior := f.class(node("x", dup))

	got := Match(N("x"), f, dup)
	require.Len(t, got, 1, "equal leaves collapse to one table")
	assert.Equal(t, 0, got[0].Len())

	assert.Empty(t, Match(N("x"), f, other))
	assert.Empty(t, Match(N("x"), f, interior), "a leaf pattern needs a leaf enode")
}

func TestMatch_ArityMustMatchWithoutTail(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	c := f.class(node("f", a), node("f", a, a), node("g", a, a))

	got := Match(N("f", W("?x"), W("?y")), f, c)

	require.Len(t, got, 1)
	assert.Equal(t, "{?x: [0], ?y: [0]}", got[0].String())
}

func TestMatch_ConsistentSiblings(t *testing.T) {
	g := egraph.New()
	x := g.AddTerm(ir.T("x"))
	xx := g.AddTerm(ir.T("+", ir.T("x"), ir.T("x")))
	xy := g.AddTerm(ir.T("+", ir.T("x"), ir.T("y")))

	p := N("+", W("?a"), W("?a"))

	got := Match(p, g, xx)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(NewWildMap(single("?a", x))))

	assert.Empty(t, Match(p, g, xy), "?a cannot be both x and y")
}

func TestMatch_ConsistencyFiltersCartesianProduct(t *testing.T) {
	f := &fakeGraph{}
	x := f.class(leaf("x"))
	y := f.class(leaf("y"))
	z := f.class(leaf("z"))
	left := f.class(node("f", x), node("f", y))
	right := f.class(node("f", y), node("f", z))
	root := f.class(node("g", left, right))

	got := Match(N("g", N("f", W("?a")), N("f", W("?a"))), f, root)

	require.Len(t, got, 1, "of the 2x2 combinations only ?a = y agrees")
	assert.True(t, got[0].Equal(NewWildMap(single("?a", y))))
}

func TestMatch_CartesianProductOrder(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	b := f.class(leaf("b"))
	c := f.class(leaf("c"))
	d := f.class(leaf("d"))
	left := f.class(node("f", a), node("f", b))
	right := f.class(node("h", c), node("h", d))
	root := f.class(node("g", left, right))

	got := Match(N("g", N("f", W("?x")), N("h", W("?y"))), f, root)

	assert.Equal(t, []string{
		"{?x: [0], ?y: [2]}",
		"{?x: [0], ?y: [3]}",
		"{?x: [1], ?y: [2]}",
		"{?x: [1], ?y: [3]}",
	}, tableStrings(got), "first position varies slowest")
}

func TestMatch_TailWildcardArity(t *testing.T) {
	p := N("f", W("?a"), Rest("?rest..."))

	for k := 0; k <= 4; k++ {
		t.Run(fmt.Sprintf("%d children", k), func(t *testing.T) {
			f := &fakeGraph{}
			var children []ir.ClassID
			for i := 0; i < k; i++ {
				children = append(children, f.class(leaf(fmt.Sprintf("x%d", i))))
			}
			root := f.class(node("f", children...))

			got := Match(p, f, root)

			if k == 0 {
				assert.Empty(t, got, "the prefix ?a needs at least one child")
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, ids(children[0]), got[0].Lookup("?a"))
			tail := got[0].Lookup("?rest...")
			assert.Len(t, tail, k-1)
			assert.Equal(t, children[1:], append([]ir.ClassID{}, tail...))
		})
	}
}

func TestMatch_TailOnlyMatchesAnyArity(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	empty := f.class(leaf("f"))
	three := f.class(node("f", a, a, a))

	p := N("f", Rest("?xs..."))

	got := Match(p, f, empty)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Lookup("?xs..."))

	got = Match(p, f, three)
	require.Len(t, got, 1)
	assert.Equal(t, ids(a, a, a), got[0].Lookup("?xs..."))
}

func TestMatch_TailNeedsFullPrefix(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	one := f.class(node("f", a))
	two := f.class(node("f", a, a))

	p := N("f", W("?x"), W("?y"), Rest("?zs..."))

	assert.Empty(t, Match(p, f, one))
	got := Match(p, f, two)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Lookup("?zs..."))
}

func TestMatch_RepeatedTailMustAgree(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	b := f.class(leaf("b"))
	root := f.class(node("g", a, b), node("g", a, a))

	p := N("h", N("g", Rest("?xs...")), N("g", Rest("?xs...")))
	pair := f.class(node("h", root, root))

	got := Match(p, f, pair)
	assert.Len(t, got, 2, "only combinations where both tails agree")
	for _, m := range got {
		assert.Len(t, m.Lookup("?xs..."), 2)
	}
}

func TestMatch_CongruenceDisjunction(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	b := f.class(leaf("b"))
	distinct := f.class(node("f", a), node("f", b))
	duplicate := f.class(node("f", a), node("f", a))

	m, ok := SearchClass(N("f", W("?x")), f, distinct)
	require.True(t, ok)
	assert.Len(t, m.Bindings, 2, "one table per matching enode")

	m, ok = SearchClass(N("f", W("?x")), f, duplicate)
	require.True(t, ok)
	require.Len(t, m.Bindings, 2, "identical tables are not deduplicated")
	assert.True(t, m.Bindings[0].Equal(m.Bindings[1]))
}

func TestSearch_BindingCompleteness(t *testing.T) {
	g := egraph.New()
	for _, term := range []ir.Term{
		ir.T("+", ir.T("a"), ir.T("*", ir.T("b"), ir.T("c"))),
		ir.T("+", ir.T("*", ir.T("a"), ir.T("a")), ir.T("b")),
		ir.T("list", ir.T("a"), ir.T("b"), ir.T("c")),
		ir.T("list", ir.T("a")),
	} {
		g.AddTerm(term)
	}

	patterns := []Pattern{
		N("+", W("?x"), W("?y")),
		N("+", W("?x"), N("*", W("?y"), W("?z"))),
		N("+", N("*", W("?x"), W("?x")), W("?y")),
		N("list", W("?h"), Rest("?t...")),
	}

	for _, p := range patterns {
		t.Run(p.String(), func(t *testing.T) {
			matches := Search(p, g)
			require.NotEmpty(t, matches)
			for _, m := range matches {
				require.NotEmpty(t, m.Bindings)
				for _, table := range m.Bindings {
					for _, w := range Wildcards(p) {
						got, ok := table.Get(w.Name, w.Kind)
						require.True(t, ok, "%s missing from %s", w.Name, table)
						if w.Kind == Single {
							assert.Len(t, got, 1)
						}
					}
					assert.Equal(t, len(Wildcards(p)), table.Len())
				}
			}
		})
	}
}

func TestSearch_SkipsNonMatchingClasses(t *testing.T) {
	g := egraph.New()
	g.AddTerm(ir.T("f", ir.T("a")))
	g.AddTerm(ir.T("g", ir.T("a")))

	matches := Search(N("h", W("?x")), g)
	assert.Empty(t, matches)

	_, ok := SearchClass(N("h", W("?x")), g, 0)
	assert.False(t, ok)
}

func TestMatch_ContractViolationsPanic(t *testing.T) {
	f := &fakeGraph{}
	a := f.class(leaf("a"))
	root := f.class(node("f", a, a))

	assert.Panics(t, func() {
		Match(N("f", Rest("?xs..."), Rest("?ys...")), f, root)
	}, "two tail wildcards")

	assert.Panics(t, func() {
		Match(N("f", Rest("?xs..."), W("?y")), f, root)
	}, "tail wildcard not last")

	assert.Panics(t, func() {
		Match(Rest("?xs..."), f, root)
	}, "tail wildcard matched against a whole class")
}
