package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingHash_Deterministic(t *testing.T) {
	b1 := map[string][]ClassID{"?a": {1}, "?b": {2}}
	b2 := map[string][]ClassID{"?b": {2}, "?a": {1}}

	h1, err := BindingHash(b1)
	require.NoError(t, err)
	h2, err := BindingHash(b2)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "map iteration order must not matter")
	assert.Len(t, h1, 64)
}

func TestBindingHash_DistinguishesValues(t *testing.T) {
	h1 := MustBindingHash(map[string][]ClassID{"?a": {1}, "?b": {2}})
	h2 := MustBindingHash(map[string][]ClassID{"?a": {2}, "?b": {1}})
	h3 := MustBindingHash(map[string][]ClassID{"?a": {1, 2}})

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestRulesHash_OrderMatters(t *testing.T) {
	r1 := RuleSpec{Name: "comm", Searcher: "(+ ?a ?b)", Applier: "(+ ?b ?a)"}
	r2 := RuleSpec{Name: "zero", Searcher: "(+ ?a 0)", Applier: "?a"}

	h12, err := RulesHash([]RuleSpec{r1, r2})
	require.NoError(t, err)
	h21, err := RulesHash([]RuleSpec{r2, r1})
	require.NoError(t, err)

	assert.NotEqual(t, h12, h21)
}

func TestRulesHash_IgnoresDescription(t *testing.T) {
	r := RuleSpec{Name: "comm", Searcher: "(+ ?a ?b)", Applier: "(+ ?b ?a)"}
	withDesc := r
	withDesc.Description = "commutativity"

	h1, err := RulesHash([]RuleSpec{r})
	require.NoError(t, err)
	h2, err := RulesHash([]RuleSpec{withDesc})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}
