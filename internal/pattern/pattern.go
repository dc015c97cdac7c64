package pattern

import (
	"fmt"
	"strings"

	"github.com/roach88/eqsat/internal/ir"
)

// Kind distinguishes wildcards that bind one class from tail wildcards.
type Kind int

const (
	Single     Kind = iota // binds exactly one class
	ZeroOrMore             // binds a trailing run of zero or more classes
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case ZeroOrMore:
		return "zero_or_more"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Var is a wildcard name such as "?x" or "?xs...". Names compare by value.
type Var string

func (v Var) String() string { return string(v) }

// restSuffix marks a ZeroOrMore wildcard in textual form.
const restSuffix = "..."

// ParseVar parses the textual form of a wildcard. "?x" is Single and
// "?xs..." is ZeroOrMore; the returned Var keeps the full text.
func ParseVar(s string) (Var, Kind, error) {
	if !strings.HasPrefix(s, "?") {
		return "", 0, fmt.Errorf("wildcard %q must start with '?'", s)
	}
	kind := Single
	name := s[1:]
	if strings.HasSuffix(name, restSuffix) {
		kind = ZeroOrMore
		name = strings.TrimSuffix(name, restSuffix)
	}
	if name == "" {
		return "", 0, fmt.Errorf("wildcard %q has an empty name", s)
	}
	return Var(s), kind, nil
}

// Pattern is a sealed sum type: either a Node or a Wildcard.
type Pattern interface {
	isPattern()
	String() string
}

var (
	_ Pattern = Node{}
	_ Pattern = Wildcard{}
)

// Node matches enodes with operator Op whose children match Children.
type Node struct {
	Op       string
	Children []Pattern
}

func (Node) isPattern() {}

func (n Node) String() string { return ToSexp(n).String() }

// Wildcard is a named free variable.
type Wildcard struct {
	Name Var
	Kind Kind
}

func (Wildcard) isPattern() {}

func (w Wildcard) String() string { return string(w.Name) }

// N builds a node pattern.
func N(op string, children ...Pattern) Node {
	return Node{Op: op, Children: children}
}

// W builds a Single wildcard. The name should include the leading '?'.
func W(name string) Wildcard {
	return Wildcard{Name: Var(name), Kind: Single}
}

// Rest builds a ZeroOrMore wildcard. The name should include the leading
// '?' and trailing "...".
func Rest(name string) Wildcard {
	return Wildcard{Name: Var(name), Kind: ZeroOrMore}
}

// IsMultiWildcard reports whether p is a ZeroOrMore wildcard.
func IsMultiWildcard(p Pattern) bool {
	w, ok := p.(Wildcard)
	return ok && w.Kind == ZeroOrMore
}

// FromTerm lifts a ground term into a wildcard-free pattern.
func FromTerm(t ir.Term) Pattern {
	children := make([]Pattern, len(t.Children))
	for i, c := range t.Children {
		children[i] = FromTerm(c)
	}
	return Node{Op: t.Op, Children: children}
}

// ToTerm lowers a pattern to a ground term. It fails with
// UnresolvedWildcardError on the first wildcard found (depth-first,
// left to right).
func ToTerm(p Pattern) (ir.Term, error) {
	switch p := p.(type) {
	case Wildcard:
		return ir.Term{}, &UnresolvedWildcardError{Name: p.Name}
	case Node:
		var children []ir.Term
		if len(p.Children) > 0 {
			children = make([]ir.Term, len(p.Children))
		}
		for i, c := range p.Children {
			t, err := ToTerm(c)
			if err != nil {
				return ir.Term{}, err
			}
			children[i] = t
		}
		return ir.Term{Op: p.Op, Children: children}, nil
	default:
		panic(fmt.Sprintf("pattern: unexpected pattern type %T", p))
	}
}

// IsGround reports whether p contains no wildcards.
func IsGround(p Pattern) bool {
	return len(Wildcards(p)) == 0
}

// Wildcards returns the distinct wildcards of p in first-occurrence order
// (depth-first, left to right).
func Wildcards(p Pattern) []Wildcard {
	var out []Wildcard
	seen := make(map[Var]bool)
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p := p.(type) {
		case Wildcard:
			if !seen[p.Name] {
				seen[p.Name] = true
				out = append(out, p)
			}
		case Node:
			for _, c := range p.Children {
				walk(c)
			}
		}
	}
	walk(p)
	return out
}

// Validate checks the structural invariants the matcher relies on:
//   - a ZeroOrMore wildcard appears only as the last child of a node
//   - a node has at most one ZeroOrMore child
//   - one name is never used with two different kinds
//
// A bare ZeroOrMore wildcard at the root is rejected too: a class is a
// single id and has no tail to bind.
func Validate(p Pattern) error {
	if p == nil {
		return &InvalidPatternError{Pattern: "<nil>", Message: "pattern is nil"}
	}
	if IsMultiWildcard(p) {
		return invalid(p, "a zero-or-more wildcard cannot be the whole pattern")
	}

	kinds := make(map[Var]Kind)
	var check func(Pattern) error
	check = func(q Pattern) error {
		switch q := q.(type) {
		case Wildcard:
			if k, ok := kinds[q.Name]; ok && k != q.Kind {
				return invalid(p, fmt.Sprintf("wildcard %s used as both %s and %s", q.Name, k, q.Kind))
			}
			kinds[q.Name] = q.Kind
		case Node:
			multi := 0
			for i, c := range q.Children {
				if c == nil {
					return &InvalidPatternError{Pattern: q.Op, Message: fmt.Sprintf("child %d of %s is nil", i, q.Op)}
				}
				if IsMultiWildcard(c) {
					multi++
				}
			}
			if multi > 1 {
				return invalid(p, fmt.Sprintf("%s has more than one zero-or-more wildcard", q.Op))
			}
			for i, c := range q.Children {
				if IsMultiWildcard(c) && i != len(q.Children)-1 {
					return invalid(p, fmt.Sprintf("zero-or-more wildcard %s must be the last child of %s", c, q.Op))
				}
				if err := check(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return check(p)
}

func invalid(p Pattern, msg string) error {
	return &InvalidPatternError{Pattern: p.String(), Message: msg}
}
