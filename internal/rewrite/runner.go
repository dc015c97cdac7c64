package rewrite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// FiringLog persists runs and their firings. Implemented by *store.Store.
type FiringLog interface {
	// WriteRun inserts or updates the run record.
	WriteRun(ctx context.Context, run ir.Run) error
	// WriteFiring records one firing. inserted is false if the same
	// (run, rule, class, binding) triple was already logged.
	WriteFiring(ctx context.Context, f ir.Firing) (id int64, inserted bool, err error)
}

// PassReport summarizes one RunPass.
type PassReport struct {
	Pass    int `json:"pass"`    // 1-based
	Matches int `json:"matches"` // binding tables found by all searchers
	Applied int `json:"applied"` // tables applied this pass
	Skipped int `json:"skipped"` // tables that already fired in an earlier pass
	Unions  int `json:"unions"`  // applications that merged two classes
	Rebuilt int `json:"rebuilt"` // additional merges found by Rebuild
}

// Runner applies a fixed, ordered rule set to a graph in passes.
//
// Rules are searched and applied in declaration order. A Runner holds the
// state of one run and is not safe for concurrent use.
type Runner struct {
	rules  []*Rewrite
	runID  string
	ids    RunIDGenerator
	clock  Sequencer
	log    FiringLog
	logger *slog.Logger
	fired  *firedSet
	quota  quota
	passes int
}

// Option configures a Runner.
type Option func(*Runner)

// WithFiringLog persists the run and every firing to log.
func WithFiringLog(log FiringLog) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithLogger sets the logger used for pass summaries.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// WithRunIDGenerator sets the generator for the run id.
// Default: UUIDv7Generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(r *Runner) {
		r.ids = gen
	}
}

// WithClock sets the sequencer that stamps firings.
// Default: a fresh Clock.
func WithClock(clock Sequencer) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithMaxFirings stops the run once more than n firings would be applied.
// Default: 0, no limit.
func WithMaxFirings(n int) Option {
	return func(r *Runner) {
		r.quota = quota{limit: n}
	}
}

// NewRunner creates a runner for rules. The slice is copied so the
// evaluation order cannot change after construction.
func NewRunner(rules []*Rewrite, opts ...Option) *Runner {
	r := &Runner{
		rules:  append([]*Rewrite(nil), rules...),
		ids:    UUIDv7Generator{},
		clock:  NewClock(),
		logger: slog.Default(),
		fired:  newFiredSet(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = r.ids.Generate()
	}
	return r
}

// RunID returns the id of this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Passes returns the number of completed passes.
func (r *Runner) Passes() int {
	return r.passes
}

// Firings returns the number of distinct firings applied so far.
func (r *Runner) Firings() int {
	return r.fired.size()
}

// Rules returns the rule set in evaluation order.
func (r *Runner) Rules() []*Rewrite {
	return append([]*Rewrite(nil), r.rules...)
}

// Run executes n passes, stopping early only if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, g Graph, n int) ([]PassReport, error) {
	reports := make([]PassReport, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := r.RunPass(ctx, g)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

type pendingMatches struct {
	rule    *Rewrite
	matches []pattern.SearchMatches
}

// RunPass searches every rule, then applies every match, then rebuilds g.
func (r *Runner) RunPass(ctx context.Context, g Graph) (PassReport, error) {
	report := PassReport{Pass: r.passes + 1}

	if err := r.writeRun(ctx); err != nil {
		return report, err
	}

	// Read phase: no rule may observe another rule's writes.
	pending := make([]pendingMatches, 0, len(r.rules))
	for _, rule := range r.rules {
		matches := rule.Search(g)
		for _, m := range matches {
			report.Matches += len(m.Bindings)
		}
		pending = append(pending, pendingMatches{rule: rule, matches: matches})
	}

	// Write phase.
	for _, p := range pending {
		for _, m := range p.matches {
			for _, bindings := range m.Bindings {
				applied, unioned, err := r.fire(ctx, g, p.rule, m.Class, bindings)
				if IsFiringLimitError(err) {
					// Leave the graph clean for the caller.
					report.Rebuilt = g.Rebuild()
					r.logger.Warn("firing quota exceeded", "run_id", r.runID, "pass", report.Pass, "error", err)
					return report, err
				}
				if err != nil {
					return report, err
				}
				if !applied {
					report.Skipped++
					continue
				}
				report.Applied++
				if unioned {
					report.Unions++
				}
			}
		}
	}

	report.Rebuilt = g.Rebuild()
	r.passes++

	if err := r.writeRun(ctx); err != nil {
		return report, err
	}

	r.logger.Info("rewrite pass complete",
		"run_id", r.runID,
		"pass", report.Pass,
		"matches", report.Matches,
		"applied", report.Applied,
		"skipped", report.Skipped,
		"unions", report.Unions,
		"rebuilt", report.Rebuilt,
	)
	return report, nil
}

// fire applies one binding table unless it already fired in this run.
func (r *Runner) fire(ctx context.Context, g Graph, rule *Rewrite, class ir.ClassID, bindings pattern.WildMap) (applied, unioned bool, err error) {
	table := bindings.Map()
	bindingHash := ir.MustBindingHash(table)
	if r.fired.has(rule.Name, class, bindingHash) {
		return false, false, nil
	}
	if err := r.quota.check(r.runID); err != nil {
		return false, false, err
	}

	result, unioned := rule.applyOne(g, class, bindings)
	r.fired.record(rule.Name, class, bindingHash)
	seq := r.clock.Next()

	r.logger.Debug("rule fired",
		"rule", rule.Name,
		"class", class,
		"bindings", bindings.String(),
		"unioned", unioned,
		"seq", seq,
	)

	if r.log == nil {
		return true, unioned, nil
	}
	firing := ir.Firing{
		RunID:       r.runID,
		Rule:        rule.Name,
		ClassID:     class,
		BindingHash: bindingHash,
		Bindings:    table,
		Result:      result,
		Seq:         seq,
	}
	if _, _, err := r.log.WriteFiring(ctx, firing); err != nil {
		return true, unioned, &FiringLogError{RunID: r.runID, Rule: rule.Name, Err: err}
	}
	return true, unioned, nil
}

func (r *Runner) writeRun(ctx context.Context) error {
	if r.log == nil {
		return nil
	}
	run, err := r.runRecord()
	if err != nil {
		return err
	}
	if err := r.log.WriteRun(ctx, run); err != nil {
		return &FiringLogError{RunID: r.runID, Err: err}
	}
	return nil
}

func (r *Runner) runRecord() (ir.Run, error) {
	specs := make([]ir.RuleSpec, len(r.rules))
	for i, rule := range r.rules {
		specs[i] = rule.Spec()
	}
	hash, err := ir.RulesHash(specs)
	if err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", r.runID, err)
	}
	return ir.Run{
		ID:        r.runID,
		RulesHash: hash,
		Passes:    r.passes,
		Version:   ir.EngineVersion,
	}, nil
}
