package pattern

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/eqsat/internal/ir"
)

// Binding is one entry of a WildMap.
type Binding struct {
	Name Var
	Kind Kind
	IDs  []ir.ClassID
}

// WildMap is an ordered binding table from wildcard name to class ids.
//
// INVARIANTS:
//   - each name occurs at most once
//   - a Single entry holds exactly one id
//
// The zero value is an empty table. Tables returned by the matcher are
// finished and should be treated as read-only.
type WildMap struct {
	entries []Binding
}

// NewWildMap builds a table from bindings in order. Panics if a name
// repeats or a Single entry does not hold exactly one id.
func NewWildMap(bindings ...Binding) WildMap {
	var m WildMap
	for _, b := range bindings {
		if b.Kind == Single && len(b.IDs) != 1 {
			panic(fmt.Sprintf("pattern: single wildcard %s bound to %d ids", b.Name, len(b.IDs)))
		}
		if _, bound := m.Insert(b.Name, b.Kind, b.IDs); bound {
			panic(fmt.Sprintf("pattern: wildcard %s bound twice", b.Name))
		}
	}
	return m
}

// Insert binds name to ids unless name is already bound. If it is, the
// table is unchanged and the existing ids are returned with bound == true so
// the caller can compare them.
func (m *WildMap) Insert(name Var, kind Kind, ids []ir.ClassID) (existing []ir.ClassID, bound bool) {
	if existing, ok := m.Get(name, kind); ok {
		return existing, true
	}
	// Clip so tables copied by value never share an append target.
	m.entries = append(slices.Clip(m.entries), Binding{Name: name, Kind: kind, IDs: slices.Clone(ids)})
	return nil, false
}

// Get returns the ids bound to name. Panics if name is bound with a
// different kind: the kind comes from the pattern, so a mismatch is a bug in
// the caller, not a user error.
func (m WildMap) Get(name Var, kind Kind) ([]ir.ClassID, bool) {
	for _, b := range m.entries {
		if b.Name == name {
			if b.Kind != kind {
				panic(fmt.Sprintf("pattern: wildcard %s bound as %s, requested as %s", name, b.Kind, kind))
			}
			return b.IDs, true
		}
	}
	return nil, false
}

// Lookup returns the ids bound to name and panics if name is unbound.
// Use it only where a prior match guarantees the binding exists.
func (m WildMap) Lookup(name Var) []ir.ClassID {
	for _, b := range m.entries {
		if b.Name == name {
			return b.IDs
		}
	}
	panic(fmt.Sprintf("pattern: didn't find wildcard %s", name))
}

// Len returns the number of bound names.
func (m WildMap) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the bindings in insertion order.
func (m WildMap) Entries() []Binding {
	out := make([]Binding, len(m.entries))
	for i, b := range m.entries {
		out[i] = Binding{Name: b.Name, Kind: b.Kind, IDs: slices.Clone(b.IDs)}
	}
	return out
}

// Equal reports whether both tables hold the same entries in the same order.
func (m WildMap) Equal(other WildMap) bool {
	return slices.EqualFunc(m.entries, other.entries, func(a, b Binding) bool {
		return a.Name == b.Name && a.Kind == b.Kind && slices.Equal(a.IDs, b.IDs)
	})
}

// Map returns the table keyed by name, for hashing and persistence.
func (m WildMap) Map() map[string][]ir.ClassID {
	out := make(map[string][]ir.ClassID, len(m.entries))
	for _, b := range m.entries {
		out[string(b.Name)] = slices.Clone(b.IDs)
	}
	return out
}

// String renders the table as "{?a: [1], ?b: [2]}".
func (m WildMap) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(e.Name))
		b.WriteString(": [")
		for j, id := range e.IDs {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(id.String())
		}
		b.WriteByte(']')
	}
	b.WriteByte('}')
	return b.String()
}

// mergeOutcome is the result of merging one binding into a table.
type mergeOutcome int

const (
	mergeInserted mergeOutcome = iota // name was new
	mergeSame                         // name already bound to identical ids
	mergeConflict                     // name already bound to different ids
)

func (m *WildMap) merge(b Binding) mergeOutcome {
	existing, bound := m.Insert(b.Name, b.Kind, b.IDs)
	switch {
	case !bound:
		return mergeInserted
	case slices.Equal(existing, b.IDs):
		return mergeSame
	default:
		return mergeConflict
	}
}

// mergedWith returns left extended with every entry of right, or false if
// the two disagree on a shared name.
func mergedWith(left, right WildMap) (WildMap, bool) {
	combined := WildMap{entries: slices.Clone(left.entries)}
	for _, b := range right.entries {
		if combined.merge(b) == mergeConflict {
			return WildMap{}, false
		}
	}
	return combined, true
}
