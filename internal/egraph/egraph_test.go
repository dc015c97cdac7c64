package egraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqsat/internal/ir"
)

func TestAdd_HashConsed(t *testing.T) {
	g := New()

	x1 := g.Add(ir.NewENode("x"))
	x2 := g.Add(ir.NewENode("x"))
	y := g.Add(ir.NewENode("y"))

	assert.Equal(t, x1, x2, "equal nodes must share a class")
	assert.NotEqual(t, x1, y)
	assert.Equal(t, 2, g.NumClasses())
	assert.Equal(t, 2, g.NumNodes())
}

func TestAddTerm_SharesSubterms(t *testing.T) {
	g := New()

	root := g.AddTerm(ir.T("+", ir.T("x"), ir.T("x")))

	assert.Equal(t, 2, g.NumClasses(), "x is shared")
	nodes := g.Nodes(root)
	require.Len(t, nodes, 1)
	assert.Equal(t, nodes[0].Children[0], nodes[0].Children[1])
}

func TestLookupTerm_DoesNotInsert(t *testing.T) {
	g := New()
	want := g.AddTerm(ir.T("f", ir.T("a")))

	got, ok := g.LookupTerm(ir.T("f", ir.T("a")))
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = g.LookupTerm(ir.T("f", ir.T("b")))
	assert.False(t, ok)
	assert.Equal(t, 2, g.NumClasses())
}

func TestUnion_MergesNodes(t *testing.T) {
	g := New()
	x := g.AddTerm(ir.T("x"))
	y := g.AddTerm(ir.T("y"))

	root, changed := g.Union(x, y)
	require.True(t, changed)
	assert.True(t, g.Equiv(x, y))
	assert.Len(t, g.Nodes(root), 2)
	assert.False(t, g.Clean())

	_, changed = g.Union(y, x)
	assert.False(t, changed, "second union is a no-op")
}

func TestRebuild_RestoresCongruence(t *testing.T) {
	g := New()
	a := g.AddTerm(ir.T("a"))
	b := g.AddTerm(ir.T("b"))
	fa := g.AddTerm(ir.T("f", ir.T("a")))
	fb := g.AddTerm(ir.T("f", ir.T("b")))
	require.False(t, g.Equiv(fa, fb))

	g.Union(a, b)
	merged := g.Rebuild()

	assert.Equal(t, 1, merged)
	assert.True(t, g.Clean())
	assert.True(t, g.Equiv(fa, fb), "f(a) and f(b) are congruent")
	assert.Len(t, g.Nodes(fa), 1, "duplicate f nodes collapse after rebuild")
	assert.Equal(t, 2, g.NumClasses())
}

func TestRebuild_Cascades(t *testing.T) {
	g := New()
	a := g.AddTerm(ir.T("a"))
	b := g.AddTerm(ir.T("b"))
	gfa := g.AddTerm(ir.T("g", ir.T("f", ir.T("a"))))
	gfb := g.AddTerm(ir.T("g", ir.T("f", ir.T("b"))))

	g.Union(a, b)
	merged := g.Rebuild()

	assert.Equal(t, 2, merged, "f level then g level")
	assert.True(t, g.Equiv(gfa, gfb))
}

func TestAdd_AfterUnionUsesCanonicalChildren(t *testing.T) {
	g := New()
	a := g.AddTerm(ir.T("a"))
	b := g.AddTerm(ir.T("b"))
	fa := g.AddTerm(ir.T("f", ir.T("a")))
	g.Union(a, b)
	g.Rebuild()

	fb := g.AddTerm(ir.T("f", ir.T("b")))
	assert.Equal(t, g.Find(fa), fb)
}

func TestClasses_AscendingOrder(t *testing.T) {
	g := New()
	for _, op := range []string{"d", "c", "b", "a"} {
		g.AddTerm(ir.T(op))
	}
	g.Union(3, 0)
	g.Rebuild()

	var ids []ir.ClassID
	for _, c := range g.Classes() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []ir.ClassID{0, 1, 2}, ids)
}

func TestFind_UnknownIDPanics(t *testing.T) {
	g := New()
	assert.Panics(t, func() { g.Find(7) })
}
