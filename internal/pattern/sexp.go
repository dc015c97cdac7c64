package pattern

import (
	"fmt"
	"strings"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/sexp"
)

// ToSexp renders p for diagnostics. A wildcard renders as its bare name, a
// leaf node as its operator, and an interior node as a list headed by its
// operator.
func ToSexp(p Pattern) sexp.Sexp {
	switch p := p.(type) {
	case Wildcard:
		return sexp.Atom(p.Name)
	case Node:
		if len(p.Children) == 0 {
			return sexp.Atom(p.Op)
		}
		list := make(sexp.List, 0, len(p.Children)+1)
		list = append(list, sexp.Atom(p.Op))
		for _, c := range p.Children {
			list = append(list, ToSexp(c))
		}
		return list
	default:
		panic(fmt.Sprintf("pattern: unexpected pattern type %T", p))
	}
}

// Parse reads a pattern from its s-expression form, e.g. "(+ ?a (f ?xs...))".
// Atoms starting with '?' are wildcards. The result is validated.
func Parse(src string) (Pattern, error) {
	s, err := sexp.Parse(src)
	if err != nil {
		return nil, err
	}
	p, err := FromSexp(s)
	if err != nil {
		return nil, err
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for patterns known to be valid.
func MustParse(src string) Pattern {
	p, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return p
}

// FromSexp converts an s-expression to a pattern without validating it.
func FromSexp(s sexp.Sexp) (Pattern, error) {
	switch s := s.(type) {
	case sexp.Atom:
		if strings.HasPrefix(string(s), "?") {
			name, kind, err := ParseVar(string(s))
			if err != nil {
				return nil, err
			}
			return Wildcard{Name: name, Kind: kind}, nil
		}
		return Node{Op: string(s)}, nil
	case sexp.List:
		if len(s) == 0 {
			return nil, fmt.Errorf("empty list is not a pattern")
		}
		op, ok := s[0].(sexp.Atom)
		if !ok {
			return nil, fmt.Errorf("operator of %s must be an atom", s)
		}
		if strings.HasPrefix(string(op), "?") {
			return nil, fmt.Errorf("operator of %s cannot be a wildcard", s)
		}
		children := make([]Pattern, 0, len(s)-1)
		for _, item := range s[1:] {
			c, err := FromSexp(item)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return Node{Op: string(op), Children: children}, nil
	default:
		return nil, fmt.Errorf("unexpected s-expression type %T", s)
	}
}

// ParseTerm reads a ground term. Wildcards are rejected with
// UnresolvedWildcardError.
func ParseTerm(src string) (ir.Term, error) {
	s, err := sexp.Parse(src)
	if err != nil {
		return ir.Term{}, err
	}
	p, err := FromSexp(s)
	if err != nil {
		return ir.Term{}, err
	}
	return ToTerm(p)
}
