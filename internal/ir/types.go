package ir

import (
	"slices"
	"strconv"
	"strings"
)

// ClassID identifies an e-class inside one e-graph.
// IDs are issued densely starting at 0 and may become non-canonical after a
// union; resolve them through the graph's Find before comparing.
type ClassID uint32

// String renders the id in decimal.
func (id ClassID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ENode is one concrete node of an e-class: an operator label and its
// ordered child classes. Two enodes are equal when both op and children are.
type ENode struct {
	Op       string    `json:"op"`
	Children []ClassID `json:"children,omitempty"`
}

// NewENode creates an enode. The children slice is copied.
func NewENode(op string, children ...ClassID) ENode {
	var cs []ClassID
	if len(children) > 0 {
		cs = slices.Clone(children)
	}
	return ENode{Op: op, Children: cs}
}

// IsLeaf reports whether the node has no children.
func (n ENode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Equal reports structural equality.
func (n ENode) Equal(other ENode) bool {
	return n.Op == other.Op && slices.Equal(n.Children, other.Children)
}

// Key returns the hash-consing key for the node.
// The op is length-prefixed so that labels containing separators cannot
// collide with child lists.
func (n ENode) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(n.Op)))
	b.WriteByte(':')
	b.WriteString(n.Op)
	for _, c := range n.Children {
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return b.String()
}

// String renders the node as "op" or "(op 1 2)".
func (n ENode) String() string {
	if n.IsLeaf() {
		return n.Op
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(n.Op)
	for _, c := range n.Children {
		b.WriteByte(' ')
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Term is a ground expression tree: an operator with term children.
// Terms contain no class ids and no wildcards.
type Term struct {
	Op       string `json:"op"`
	Children []Term `json:"children,omitempty"`
}

// T builds a term. T("x") is a leaf; T("+", T("x"), T("y")) is (+ x y).
func T(op string, children ...Term) Term {
	return Term{Op: op, Children: children}
}

// Equal reports structural equality.
func (t Term) Equal(other Term) bool {
	if t.Op != other.Op || len(t.Children) != len(other.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Size returns the number of nodes in the term.
func (t Term) Size() int {
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}

// String renders the term in s-expression form.
func (t Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Term) write(b *strings.Builder) {
	if len(t.Children) == 0 {
		b.WriteString(t.Op)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.Op)
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}
