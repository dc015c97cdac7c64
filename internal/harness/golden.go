package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/eqsat/internal/ir"
)

// Snapshot renders the deterministic part of a result as canonical JSON.
// Assertion errors are not part of the snapshot.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	passes := make([]any, len(result.Passes))
	for i, p := range result.Passes {
		passes[i] = map[string]any{
			"pass":    p.Pass,
			"matches": p.Matches,
			"applied": p.Applied,
			"skipped": p.Skipped,
			"unions":  p.Unions,
			"rebuilt": p.Rebuilt,
		}
	}

	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		trace[i] = map[string]any{
			"seq":      event.Seq,
			"rule":     event.Rule,
			"class":    event.Class,
			"bindings": event.Bindings,
			"result":   event.Result,
		}
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"run_id":        result.RunID,
		"passes":        passes,
		"trace":         trace,
		"classes":       result.Classes,
		"nodes":         result.Nodes,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check assertions.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
