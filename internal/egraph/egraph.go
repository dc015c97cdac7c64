package egraph

import (
	"fmt"
	"slices"

	"github.com/roach88/eqsat/internal/ir"
)

// EClass is one congruence class.
type EClass struct {
	ID    ir.ClassID
	Nodes []ir.ENode

	// parents are the enodes (and their classes) that use this class as a
	// child. Used by Rebuild to find nodes whose keys went stale.
	parents []parentRef
}

type parentRef struct {
	node  ir.ENode
	class ir.ClassID
}

// Len returns the number of enodes in the class.
func (c *EClass) Len() int {
	return len(c.Nodes)
}

// EGraph is a hash-consed collection of congruence classes.
//
// EGraph is not safe for concurrent use. Searches may run against a graph
// only while no Add, Union, or Rebuild is in progress.
type EGraph struct {
	unionFind []ir.ClassID
	classes   map[ir.ClassID]*EClass
	memo      map[string]ir.ClassID
	pending   []ir.ClassID
}

// New creates an empty e-graph.
func New() *EGraph {
	return &EGraph{
		classes: make(map[ir.ClassID]*EClass),
		memo:    make(map[string]ir.ClassID),
	}
}

// Find returns the canonical id for id.
// Panics if id was never issued by this graph.
func (g *EGraph) Find(id ir.ClassID) ir.ClassID {
	if int(id) >= len(g.unionFind) {
		panic(fmt.Sprintf("egraph: unknown class id %d", id))
	}
	root := id
	for g.unionFind[root] != root {
		root = g.unionFind[root]
	}
	// Path compression.
	for g.unionFind[id] != root {
		next := g.unionFind[id]
		g.unionFind[id] = root
		id = next
	}
	return root
}

// canonicalize returns a copy of n with every child replaced by its
// canonical id.
func (g *EGraph) canonicalize(n ir.ENode) ir.ENode {
	out := ir.ENode{Op: n.Op}
	if len(n.Children) > 0 {
		out.Children = make([]ir.ClassID, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = g.Find(c)
		}
	}
	return out
}

// Lookup returns the class holding a node structurally equal to n (after
// canonicalizing its children), without inserting anything.
func (g *EGraph) Lookup(n ir.ENode) (ir.ClassID, bool) {
	id, ok := g.memo[g.canonicalize(n).Key()]
	if !ok {
		return 0, false
	}
	return g.Find(id), true
}

// Add inserts n and returns its canonical class.
//
// Add is hash-consed: if an equal node already exists, its class is returned
// and the graph is unchanged. Otherwise a new singleton class is created.
func (g *EGraph) Add(n ir.ENode) ir.ClassID {
	n = g.canonicalize(n)
	key := n.Key()
	if id, ok := g.memo[key]; ok {
		return g.Find(id)
	}

	id := ir.ClassID(len(g.unionFind))
	g.unionFind = append(g.unionFind, id)
	g.classes[id] = &EClass{ID: id, Nodes: []ir.ENode{n}}
	g.memo[key] = id

	for _, child := range n.Children {
		c := g.classes[child]
		c.parents = append(c.parents, parentRef{node: n, class: id})
	}
	return id
}

// AddTerm inserts every node of t bottom-up and returns the root's class.
func (g *EGraph) AddTerm(t ir.Term) ir.ClassID {
	children := make([]ir.ClassID, len(t.Children))
	for i, c := range t.Children {
		children[i] = g.AddTerm(c)
	}
	return g.Add(ir.ENode{Op: t.Op, Children: children})
}

// LookupTerm finds the class representing t without inserting anything.
func (g *EGraph) LookupTerm(t ir.Term) (ir.ClassID, bool) {
	children := make([]ir.ClassID, len(t.Children))
	for i, c := range t.Children {
		id, ok := g.LookupTerm(c)
		if !ok {
			return 0, false
		}
		children[i] = id
	}
	return g.Lookup(ir.ENode{Op: t.Op, Children: children})
}

// Union merges the classes of a and b. It returns the canonical id of the
// merged class and whether anything changed. Congruence is restored lazily by
// Rebuild.
func (g *EGraph) Union(a, b ir.ClassID) (ir.ClassID, bool) {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return ra, false
	}

	ca, cb := g.classes[ra], g.classes[rb]
	if weight(cb) > weight(ca) || (weight(cb) == weight(ca) && rb < ra) {
		ra, rb = rb, ra
		ca, cb = cb, ca
	}

	g.unionFind[rb] = ra
	ca.Nodes = append(ca.Nodes, cb.Nodes...)
	ca.parents = append(ca.parents, cb.parents...)
	delete(g.classes, rb)

	g.pending = append(g.pending, ra)
	return ra, true
}

func weight(c *EClass) int {
	return len(c.Nodes) + len(c.parents)
}

// Equiv reports whether a and b are in the same class.
func (g *EGraph) Equiv(a, b ir.ClassID) bool {
	return g.Find(a) == g.Find(b)
}

// Clean reports whether there are no unions awaiting Rebuild.
func (g *EGraph) Clean() bool {
	return len(g.pending) == 0
}

// Rebuild restores the hash-cons and congruence invariants after unions.
// It returns the number of additional unions congruence closure performed.
func (g *EGraph) Rebuild() int {
	merged := 0
	for len(g.pending) > 0 {
		todo := g.pending
		g.pending = nil

		seen := make(map[ir.ClassID]bool, len(todo))
		for _, id := range todo {
			id = g.Find(id)
			if seen[id] {
				continue
			}
			seen[id] = true
			merged += g.repair(id)
		}
	}

	for _, c := range g.classes {
		c.Nodes = g.dedupe(c.Nodes)
	}
	return merged
}

// repair re-canonicalizes the parents of class id, unioning any that became
// congruent.
func (g *EGraph) repair(id ir.ClassID) int {
	c := g.classes[id]
	old := c.parents
	n0 := len(old)

	for _, p := range old {
		delete(g.memo, p.node.Key())
		n := g.canonicalize(p.node)
		g.memo[n.Key()] = g.Find(p.class)
	}

	merged := 0
	var parents []parentRef
	index := make(map[string]int, n0)
	for _, p := range old {
		n := g.canonicalize(p.node)
		key := n.Key()
		if i, ok := index[key]; ok {
			if _, changed := g.Union(p.class, parents[i].class); changed {
				merged++
			}
			parents[i].class = g.Find(p.class)
			continue
		}
		index[key] = len(parents)
		parents = append(parents, parentRef{node: n, class: g.Find(p.class)})
	}

	// A union above may have appended to c.parents (c stayed root) or moved
	// everything to another root, which is then pending and repaired again.
	if g.classes[g.Find(id)] == c {
		c.parents = append(parents, c.parents[n0:]...)
	}
	return merged
}

func (g *EGraph) dedupe(nodes []ir.ENode) []ir.ENode {
	out := make([]ir.ENode, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		n = g.canonicalize(n)
		key := n.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// Class returns the class holding id. The returned class must be treated as
// read-only.
func (g *EGraph) Class(id ir.ClassID) *EClass {
	return g.classes[g.Find(id)]
}

// Nodes returns the enode set of the class holding id.
func (g *EGraph) Nodes(id ir.ClassID) []ir.ENode {
	return g.Class(id).Nodes
}

// Classes returns every canonical class in ascending id order.
func (g *EGraph) Classes() []*EClass {
	ids := g.ClassIDs()
	out := make([]*EClass, len(ids))
	for i, id := range ids {
		out[i] = g.classes[id]
	}
	return out
}

// ClassIDs returns every canonical class id in ascending order.
func (g *EGraph) ClassIDs() []ir.ClassID {
	ids := make([]ir.ClassID, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NumClasses returns the number of canonical classes.
func (g *EGraph) NumClasses() int {
	return len(g.classes)
}

// NumNodes returns the total number of enodes across all classes.
func (g *EGraph) NumNodes() int {
	n := 0
	for _, c := range g.classes {
		n += len(c.Nodes)
	}
	return n
}
