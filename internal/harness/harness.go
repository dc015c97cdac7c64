package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/eqsat/internal/compiler"
	"github.com/roach88/eqsat/internal/egraph"
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
	"github.com/roach88/eqsat/internal/rewrite"
	"github.com/roach88/eqsat/internal/store"
	"github.com/roach88/eqsat/internal/testutil"
)

// Harness is the scenario execution state.
type Harness struct {
	store  *store.Store
	graph  *egraph.EGraph
	clock  *testutil.DeterministicClock
	runGen *testutil.FixedRunIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Build the graph from terms, apply unions and rebuild
// 2. Compile and validate the rules
// 3. Run the passes, logging every firing to the store
// 4. Read the trace back from the store
// 5. Evaluate assertions
//
// An error means the scenario could not run (bad term, invalid rule).
// Failed assertions are reported in the result instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		graph:  egraph.New(),
		clock:  testutil.NewDeterministicClock(),
		runGen: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	if err := h.buildGraph(scenario); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	rules, err := h.compileRules(scenario.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	runner := rewrite.NewRunner(rules,
		rewrite.WithFiringLog(st),
		rewrite.WithRunIDGenerator(h.runGen),
		rewrite.WithClock(h.clock),
		rewrite.WithLogger(h.logger),
	)

	result := NewResult()
	result.RunID = runner.RunID()

	reports, err := runner.Run(ctx, h.graph, scenario.Passes)
	if err != nil {
		return nil, fmt.Errorf("failed to run rules: %w", err)
	}
	result.Passes = append(result.Passes, reports...)

	firings, err := st.ReadFirings(ctx, runner.RunID())
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	for _, f := range firings {
		result.AddFiring(f)
	}
	result.Classes = h.graph.NumClasses()
	result.Nodes = h.graph.NumNodes()

	h.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"run_id", result.RunID,
		"passes", len(reports),
		"firings", len(result.Trace),
	)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.graph) {
		result.AddError(msg)
	}

	return result, nil
}

// buildGraph adds every term, then applies the unions and rebuilds.
func (h *Harness) buildGraph(scenario *Scenario) error {
	for i, src := range scenario.Terms {
		if _, err := h.addTerm(src); err != nil {
			return fmt.Errorf("terms[%d]: %w", i, err)
		}
	}

	for i, pair := range scenario.Unions {
		a, err := h.addTerm(pair[0])
		if err != nil {
			return fmt.Errorf("unions[%d]: %w", i, err)
		}
		b, err := h.addTerm(pair[1])
		if err != nil {
			return fmt.Errorf("unions[%d]: %w", i, err)
		}
		h.graph.Union(a, b)
	}

	if merged := h.graph.Rebuild(); merged > 0 {
		h.logger.Debug("initial unions closed under congruence", "merged", merged)
	}
	return nil
}

func (h *Harness) addTerm(src string) (ir.ClassID, error) {
	term, err := pattern.ParseTerm(src)
	if err != nil {
		return 0, err
	}
	return h.graph.AddTerm(term), nil
}

// compileRules validates the rules as a set and builds them.
func (h *Harness) compileRules(steps []RuleStep) ([]*rewrite.Rewrite, error) {
	specs := make([]ir.RuleSpec, len(steps))
	for i, step := range steps {
		specs[i] = step.Spec()
	}
	for _, w := range compiler.AnalyzeCycles(specs) {
		h.logger.Debug("rule cycle", "level", w.Level, "message", w.Message)
	}
	return compiler.Build(specs)
}
