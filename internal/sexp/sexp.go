// Package sexp reads and renders s-expressions.
//
// Only the subset needed for terms and patterns is supported: atoms are runs
// of characters other than whitespace, parentheses, and ';'. A ';' starts a
// comment that runs to the end of the line. There are no strings or quoting.
package sexp

import (
	"fmt"
	"strings"
)

// Sexp is either an Atom or a List.
type Sexp interface {
	sexp()
	String() string
}

// Atom is a bare symbol such as "+", "x", or "?a".
type Atom string

func (Atom) sexp() {}

func (a Atom) String() string { return string(a) }

// List is a parenthesized sequence.
type List []Sexp

func (List) sexp() {}

func (l List) String() string {
	var b strings.Builder
	l.write(&b)
	return b.String()
}

func (l List) write(b *strings.Builder) {
	b.WriteByte('(')
	for i, item := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		if sub, ok := item.(List); ok {
			sub.write(b)
		} else {
			b.WriteString(item.String())
		}
	}
	b.WriteByte(')')
}

// SyntaxError reports malformed input.
type SyntaxError struct {
	Offset  int // byte offset in the input
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sexp: offset %d: %s", e.Offset, e.Message)
}

// Parse reads exactly one s-expression from src.
func Parse(src string) (Sexp, error) {
	all, err := ParseAll(src)
	if err != nil {
		return nil, err
	}
	switch len(all) {
	case 0:
		return nil, &SyntaxError{Offset: len(src), Message: "empty input"}
	case 1:
		return all[0], nil
	default:
		return nil, &SyntaxError{Offset: len(src), Message: fmt.Sprintf("expected one expression, found %d", len(all))}
	}
}

// ParseAll reads every top-level s-expression in src.
func ParseAll(src string) ([]Sexp, error) {
	r := &reader{src: src}
	var out []Sexp
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return out, nil
		}
		s, err := r.read()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

type reader struct {
	src string
	pos int
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) read() (Sexp, error) {
	switch r.src[r.pos] {
	case '(':
		start := r.pos
		r.pos++
		list := List{}
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return nil, &SyntaxError{Offset: start, Message: "unclosed '('"}
			}
			if r.src[r.pos] == ')' {
				r.pos++
				return list, nil
			}
			item, err := r.read()
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
	case ')':
		return nil, &SyntaxError{Offset: r.pos, Message: "unexpected ')'"}
	default:
		start := r.pos
		for r.pos < len(r.src) && !isDelimiter(r.src[r.pos]) {
			r.pos++
		}
		return Atom(r.src[start:r.pos]), nil
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', ';', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
