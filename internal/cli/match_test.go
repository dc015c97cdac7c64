package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqsat/internal/ir"
)

func runMatchCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewMatchCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestMatchSingleClass(t *testing.T) {
	output, err := runMatchCommand(t, "text", "(+ ?a ?b)", "(+ x y)")
	require.NoError(t, err)

	assert.Contains(t, output, "Pattern: (+ ?a ?b)")
	assert.Contains(t, output, "class 2: {?a: [0], ?b: [1]}")
	assert.Contains(t, output, "Total: 1 match(es) in 3 class(es)")
}

func TestMatchJSON(t *testing.T) {
	output, err := runMatchCommand(t, "json", "(+ ?a ?b)", "(+ x y)")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"?a", "?b"}, resp.Data.Wildcards)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Matches, 1)
	assert.Equal(t, ir.ClassID(2), resp.Data.Matches[0].Class)
	assert.Equal(t, map[string][]ir.ClassID{"?a": {0}, "?b": {1}}, resp.Data.Matches[0].Bindings)
}

func TestMatchRepeatedWildcard(t *testing.T) {
	output, err := runMatchCommand(t, "text", "(+ ?a ?a)", "(+ x x)", "(+ x y)")
	require.NoError(t, err)

	assert.Contains(t, output, "class 1: {?a: [0]}")
	assert.NotContains(t, output, "class 3")
	assert.Contains(t, output, "Total: 1 match(es)")
}

func TestMatchZeroOrMore(t *testing.T) {
	output, err := runMatchCommand(t, "text", "(list ?h ?t...)", "(list a b c)")
	require.NoError(t, err)

	assert.Contains(t, output, "class 3: {?h: [0], ?t...: [1 2]}")
}

func TestMatchEmptyTailJSON(t *testing.T) {
	output, err := runMatchCommand(t, "json", "(list ?h ?t...)", "(list a)")
	require.NoError(t, err)

	// The empty tail is encoded as [] rather than null
	assert.Contains(t, output, `"?t...":[]`)

	var resp struct {
		Data MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.Data.Matches, 1)
	assert.Equal(t, []ir.ClassID{}, resp.Data.Matches[0].Bindings["?t..."])
}

func TestMatchNoMatches(t *testing.T) {
	output, err := runMatchCommand(t, "text", "(* ?a ?b)", "(+ x y)")
	require.NoError(t, err)
	assert.Contains(t, output, "No matches in 3 class(es)")
}

func TestMatchInvalidPattern(t *testing.T) {
	output, err := runMatchCommand(t, "text", "(+ ?a", "(+ x y)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeInvalidQuery)
	assert.Contains(t, output, "Error [E009]")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMatchMisplacedTail(t *testing.T) {
	_, err := runMatchCommand(t, "text", "(list ?t... ?h)", "(list a b)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeInvalidQuery)
}

func TestMatchNonGroundTerm(t *testing.T) {
	output, err := runMatchCommand(t, "text", "(+ ?a ?b)", "(+ ?a b)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeInvalidTerm)
	assert.Contains(t, output, "must be ground")
}

func TestMatchMissingArgs(t *testing.T) {
	_, err := runMatchCommand(t, "text", "(+ ?a ?b)")
	require.Error(t, err)
}

func TestBuildGraph(t *testing.T) {
	g, ids, err := buildGraph([]string{"(+ x y)", "x", "(f (+ x y))"})
	require.NoError(t, err)

	assert.Equal(t, []ir.ClassID{2, 0, 3}, ids)
	assert.Equal(t, 4, g.NumClasses())
}
