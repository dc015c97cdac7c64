package pattern

import (
	"fmt"
	"slices"

	"github.com/roach88/eqsat/internal/ir"
)

// Instantiate builds the term described by p under bindings, inserting it
// into g. A wildcard yields its bound ids verbatim. A node yields exactly
// one id; its children are the concatenation of its instantiated children,
// so a ZeroOrMore child may splice in any number of ids.
//
// Panics if a wildcard of p is unbound.
func Instantiate(p Pattern, g MutableGraph, bindings WildMap) []ir.ClassID {
	switch p := p.(type) {
	case Wildcard:
		ids, ok := bindings.Get(p.Name, p.Kind)
		if !ok {
			panic(fmt.Sprintf("pattern: wildcard %s is not bound in %s", p.Name, bindings))
		}
		return slices.Clone(ids)
	case Node:
		var children []ir.ClassID
		for _, c := range p.Children {
			children = append(children, Instantiate(c, g, bindings)...)
		}
		return []ir.ClassID{g.Add(ir.ENode{Op: p.Op, Children: children})}
	default:
		panic(fmt.Sprintf("pattern: unexpected pattern type %T", p))
	}
}

// SubstGround is the single-id special case of Instantiate for patterns
// built only from Single wildcards. Panics on a ZeroOrMore wildcard.
func SubstGround(p Pattern, g MutableGraph, bindings WildMap) ir.ClassID {
	switch p := p.(type) {
	case Wildcard:
		if p.Kind != Single {
			panic(fmt.Sprintf("pattern: SubstGround cannot splice zero-or-more wildcard %s", p.Name))
		}
		ids, ok := bindings.Get(p.Name, Single)
		if !ok {
			panic(fmt.Sprintf("pattern: wildcard %s is not bound in %s", p.Name, bindings))
		}
		return ids[0]
	case Node:
		var children []ir.ClassID
		if len(p.Children) > 0 {
			children = make([]ir.ClassID, len(p.Children))
		}
		for i, c := range p.Children {
			children[i] = SubstGround(c, g, bindings)
		}
		return g.Add(ir.ENode{Op: p.Op, Children: children})
	default:
		panic(fmt.Sprintf("pattern: unexpected pattern type %T", p))
	}
}
