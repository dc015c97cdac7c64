package sexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Atom(t *testing.T) {
	s, err := Parse("  ?a  ")
	require.NoError(t, err)
	assert.Equal(t, Atom("?a"), s)
}

func TestParse_Nested(t *testing.T) {
	s, err := Parse("(+ x (* y 2))")
	require.NoError(t, err)

	want := List{Atom("+"), Atom("x"), List{Atom("*"), Atom("y"), Atom("2")}}
	assert.Equal(t, want, s)
	assert.Equal(t, "(+ x (* y 2))", s.String())
}

func TestParse_Comments(t *testing.T) {
	s, err := Parse("; leading\n(f ; inner\n a)")
	require.NoError(t, err)
	assert.Equal(t, "(f a)", s.String())
}

func TestParse_EmptyList(t *testing.T) {
	s, err := Parse("()")
	require.NoError(t, err)
	assert.Equal(t, List{}, s)
	assert.Equal(t, "()", s.String())
}

func TestParseAll_Multiple(t *testing.T) {
	all, err := ParseAll("x (f y)\nz")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "(f y)", all[1].String())
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		offset int
	}{
		{"empty", "   ", 3},
		{"unclosed", "(f (g x)", 0},
		{"stray close", "f)", 1},
		{"two expressions", "a b", 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			require.Error(t, err)

			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.offset, se.Offset)
		})
	}
}
