package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Commutativity(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "commutativity.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "commutativity", scenario.Name)
	assert.Equal(t, "run-comm", scenario.RunID)
	assert.Equal(t, []string{"(+ x y)"}, scenario.Terms)
	assert.Equal(t, 2, scenario.Passes)
	require.Len(t, scenario.Rules, 1)
	assert.Equal(t, RuleStep{Name: "comm-add", Searcher: "(+ ?a ?b)", Applier: "(+ ?b ?a)"}, scenario.Rules[0])
	require.Len(t, scenario.Assertions, 4)
	assert.Equal(t, AssertMatchCount, scenario.Assertions[1].Type)
	assert.Equal(t, "(+ ?a ?b)", scenario.Assertions[1].Pattern)
	assert.Equal(t, 2, scenario.Assertions[1].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Unions(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unions
description: "initial unions"
terms: ["(f a)", "(f b)"]
unions:
  - [a, b]
assertions:
  - type: class_count
    count: 2
`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, scenario.Unions)
	assert.Equal(t, 0, scenario.Passes)
	assert.Empty(t, scenario.Rules)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nterms: [a]\nassertions: [{type: class_count}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nterms: [a]\nassertions: [{type: class_count}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing terms",
			yaml:    "name: x\ndescription: d\nassertions: [{type: class_count}]\n",
			wantErr: "terms list is required",
		},
		{
			name:    "negative passes",
			yaml:    "name: x\ndescription: d\nterms: [a]\npasses: -1\nassertions: [{type: class_count}]\n",
			wantErr: "passes must be non-negative",
		},
		{
			name:    "missing assertions",
			yaml:    "name: x\ndescription: d\nterms: [a]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "union not a pair",
			yaml:    "name: x\ndescription: d\nterms: [a]\nunions: [[a, b, c]]\nassertions: [{type: class_count}]\n",
			wantErr: "unions[0]: expected a pair of terms, got 3",
		},
		{
			name:    "rule without applier",
			yaml:    "name: x\ndescription: d\nterms: [a]\nrules: [{name: r, searcher: a}]\nassertions: [{type: class_count}]\n",
			wantErr: "rules[0]: applier is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertions: [{type: final_state}]\n",
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name:    "equivalent with one term",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertions: [{type: equivalent, terms: [a]}]\n",
			wantErr: "at least two terms are required",
		},
		{
			name:    "not_equivalent with three terms",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertions: [{type: not_equivalent, terms: [a, b, c]}]\n",
			wantErr: "exactly two terms are required",
		},
		{
			name:    "match_count without pattern",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertions: [{type: match_count, count: 1}]\n",
			wantErr: "pattern is required for match_count",
		},
		{
			name:    "fire_count without rule",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertions: [{type: fire_count, count: 1}]\n",
			wantErr: "rule is required for fire_count",
		},
		{
			name:    "negative count",
			yaml:    "name: x\ndescription: d\nterms: [a]\nassertions: [{type: class_count, count: -2}]\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
