package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqsat/internal/compiler"
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/rewrite"
	"github.com/roach88/eqsat/internal/testutil"
)

func commutativity() *Scenario {
	return &Scenario{
		Name:        "commutativity",
		Description: "a + b is equivalent to b + a after one pass",
		RunID:       "run-comm",
		Terms:       []string{"(+ x y)"},
		Rules: []RuleStep{
			{Name: "comm-add", Searcher: "(+ ?a ?b)", Applier: "(+ ?b ?a)"},
		},
		Passes: 2,
		Assertions: []Assertion{
			{Type: AssertEquivalent, Terms: []string{"(+ x y)", "(+ y x)"}},
			{Type: AssertMatchCount, Pattern: "(+ ?a ?b)", Count: 2},
			{Type: AssertClassCount, Count: 3},
			{Type: AssertFireCount, Rule: "comm-add", Count: 2},
		},
	}
}

func TestRun_Commutativity(t *testing.T) {
	result, err := Run(commutativity())
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "run-comm", result.RunID)
	assert.Equal(t, []rewrite.PassReport{
		{Pass: 1, Matches: 1, Applied: 1, Unions: 1},
		{Pass: 2, Matches: 2, Applied: 1, Skipped: 1},
	}, result.Passes)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, TraceEvent{
		Seq:      1,
		Rule:     "comm-add",
		Class:    2,
		Bindings: map[string][]ir.ClassID{"?a": {0}, "?b": {1}},
		Result:   3,
	}, result.Trace[0])
	assert.Equal(t, int64(2), result.Trace[1].Seq)
	assert.Equal(t, 3, result.Classes)
	assert.Equal(t, 4, result.Nodes)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(commutativity())
	require.NoError(t, err)
	second, err := Run(commutativity())
	require.NoError(t, err)

	a, err := Snapshot("commutativity", first)
	require.NoError(t, err)
	b, err := Snapshot("commutativity", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_DefaultRunID(t *testing.T) {
	scenario := commutativity()
	scenario.RunID = ""

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultRunID, result.RunID)
}

func TestRun_InitialUnionsRebuilt(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "unions",
		Description: "initial unions are closed under congruence",
		Terms:       []string{"(f a)", "(f b)"},
		Unions:      [][]string{{"a", "b"}},
		Assertions: []Assertion{
			{Type: AssertEquivalent, Terms: []string{"(f a)", "(f b)"}},
			{Type: AssertClassCount, Count: 2},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Passes)
	assert.Empty(t, result.Trace)
	assert.Equal(t, 3, result.Nodes)
}

func TestRun_UnionAddsMissingTerms(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "union-new",
		Description: "a union may name terms not listed",
		Terms:       []string{"x"},
		Unions:      [][]string{{"x", "(g y)"}},
		Assertions: []Assertion{
			{Type: AssertEquivalent, Terms: []string{"x", "(g y)"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailedAssertions(t *testing.T) {
	scenario := commutativity()
	scenario.Assertions = []Assertion{
		{Type: AssertNotEquivalent, Terms: []string{"(+ x y)", "(+ y x)"}},
		{Type: AssertEquivalent, Terms: []string{"(+ x y)", "(* x y)"}},
		{Type: AssertEquivalent, Terms: []string{"x", "y"}},
		{Type: AssertMatchCount, Pattern: "(+ ?a ?b)", Count: 5},
		{Type: AssertClassCount, Count: 1},
		{Type: AssertFireCount, Rule: "comm-add", Count: 0},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "both in class 2")
	assert.Contains(t, result.Errors[1], "(* x y) is not in the graph")
	assert.Contains(t, result.Errors[2], "classes 0 and 1")
	assert.Contains(t, result.Errors[3], "Actual: 2")
	assert.Contains(t, result.Errors[4], "Actual: 3 classes")
	assert.Contains(t, result.Errors[5], "fired 2 times")
}

func TestRun_Splice(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "splice.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, map[string][]ir.ClassID{"?h": {0}, "?t...": {1, 2}}, result.Trace[0].Bindings)
}

func TestRun_InvalidTerm(t *testing.T) {
	scenario := commutativity()
	scenario.Terms = []string{"(+ x"}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build graph: terms[0]")
}

func TestRun_InvalidRule(t *testing.T) {
	scenario := commutativity()
	scenario.Rules = []RuleStep{{Name: "bad", Searcher: "(+ ?a ?b)", Applier: "(+ ?c ?a)"}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile rules")
	assert.Contains(t, err.Error(), string(compiler.ErrUnboundWildcard))
}

func TestRun_LoadedScenario(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "commutativity.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertClassCount, Expected: "2 classes", Actual: "3 classes"}
	assert.Equal(t, "Assertion failed: class_count\n  Expected: 2 classes\n  Actual: 3 classes", err.Error())
}
