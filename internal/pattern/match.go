package pattern

import (
	"fmt"
	"slices"

	"github.com/roach88/eqsat/internal/ir"
)

// Graph is the read side of an e-graph consumed by the matcher.
type Graph interface {
	// ClassIDs returns the canonical class ids in a deterministic order.
	ClassIDs() []ir.ClassID
	// Nodes returns the enode set of the class holding id.
	Nodes(id ir.ClassID) []ir.ENode
}

// MutableGraph adds hash-consed insertion for instantiation.
type MutableGraph interface {
	Graph
	Add(n ir.ENode) ir.ClassID
}

// Match returns every binding table under which p matches class. An empty
// result means p does not match the class at all.
//
// Panics if p violates the invariants checked by Validate.
func Match(p Pattern, g Graph, class ir.ClassID) []WildMap {
	switch p := p.(type) {
	case Wildcard:
		if p.Kind != Single {
			panic(fmt.Sprintf("pattern: zero-or-more wildcard %s matched against a single class", p.Name))
		}
		return []WildMap{{entries: []Binding{{Name: p.Name, Kind: Single, IDs: []ir.ClassID{class}}}}}
	case Node:
		if len(p.Children) == 0 {
			return matchLeaf(p, g, class)
		}
		return matchInterior(p, g, class)
	default:
		panic(fmt.Sprintf("pattern: unexpected pattern type %T", p))
	}
}

// matchLeaf yields at most one empty table: several equal leaves carry no
// extra information.
func matchLeaf(p Node, g Graph, class ir.ClassID) []WildMap {
	for _, n := range g.Nodes(class) {
		if n.IsLeaf() && n.Op == p.Op {
			return []WildMap{{}}
		}
	}
	return nil
}

func matchInterior(p Node, g Graph, class ir.ClassID) []WildMap {
	tail, prefix := splitTail(p)

	var out []WildMap
enodes:
	for _, n := range g.Nodes(class) {
		if n.Op != p.Op {
			continue
		}

		var suffix []ir.ClassID
		if tail != nil {
			// Not enough children to cover even the fixed prefix.
			if len(n.Children) < prefix {
				continue
			}
			suffix = slices.Clone(n.Children[prefix:])
		} else if len(n.Children) != prefix {
			continue
		}

		positions := make([][]WildMap, 0, prefix+1)
		for i := 0; i < prefix; i++ {
			candidates := Match(p.Children[i], g, n.Children[i])
			if len(candidates) == 0 {
				continue enodes
			}
			positions = append(positions, candidates)
		}
		if tail != nil {
			positions = append(positions, []WildMap{{entries: []Binding{{Name: tail.Name, Kind: ZeroOrMore, IDs: suffix}}}})
		}

		out = append(out, product(positions)...)
	}
	return out
}

// splitTail locates the optional ZeroOrMore wildcard among p's children.
// It returns the wildcard (or nil) and the length of the fixed prefix that
// is matched position by position.
func splitTail(p Node) (*Wildcard, int) {
	n := len(p.Children)
	var tail *Wildcard
	count := 0
	for i, c := range p.Children {
		if !IsMultiWildcard(c) {
			continue
		}
		count++
		if count > 1 {
			panic(fmt.Sprintf("pattern: %s can only have one zero-or-more wildcard", p))
		}
		if i != n-1 {
			panic(fmt.Sprintf("pattern: zero-or-more wildcard must be in the tail position of %s", p))
		}
		w := c.(Wildcard)
		tail = &w
	}
	if tail == nil {
		return nil, n
	}
	return tail, n - 1
}

// product folds the per-position candidate tables left to right, keeping
// only consistent combinations. A partial combination that conflicts is
// dropped before it is extended further.
func product(positions [][]WildMap) []WildMap {
	if len(positions) == 0 {
		return nil
	}
	acc := positions[0]
	for _, next := range positions[1:] {
		var merged []WildMap
		for _, left := range acc {
			for _, right := range next {
				if m, ok := mergedWith(left, right); ok {
					merged = append(merged, m)
				}
			}
		}
		if len(merged) == 0 {
			return nil
		}
		acc = merged
	}
	return acc
}
