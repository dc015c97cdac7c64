package pattern

import (
	"github.com/roach88/eqsat/internal/ir"
)

// fakeGraph lets tests build class contents directly, including states a
// rebuilt e-graph never has (duplicate enodes in one class).
type fakeGraph struct {
	classes [][]ir.ENode
}

func (f *fakeGraph) class(nodes ...ir.ENode) ir.ClassID {
	f.classes = append(f.classes, nodes)
	return ir.ClassID(len(f.classes) - 1)
}

func (f *fakeGraph) ClassIDs() []ir.ClassID {
	ids := make([]ir.ClassID, len(f.classes))
	for i := range f.classes {
		ids[i] = ir.ClassID(i)
	}
	return ids
}

func (f *fakeGraph) Nodes(id ir.ClassID) []ir.ENode {
	return f.classes[id]
}

func (f *fakeGraph) Add(n ir.ENode) ir.ClassID {
	for id, nodes := range f.classes {
		for _, existing := range nodes {
			if existing.Equal(n) {
				return ir.ClassID(id)
			}
		}
	}
	return f.class(n)
}

func leaf(op string) ir.ENode {
	return ir.NewENode(op)
}

func node(op string, children ...ir.ClassID) ir.ENode {
	return ir.NewENode(op, children...)
}

func ids(xs ...ir.ClassID) []ir.ClassID {
	return xs
}

func single(name string, id ir.ClassID) Binding {
	return Binding{Name: Var(name), Kind: Single, IDs: []ir.ClassID{id}}
}

func rest(name string, xs ...ir.ClassID) Binding {
	return Binding{Name: Var(name), Kind: ZeroOrMore, IDs: xs}
}

func tableStrings(ms []WildMap) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}
