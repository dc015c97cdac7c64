package harness

import (
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/rewrite"
)

// TraceEvent is one firing as read back from the store.
type TraceEvent struct {
	Seq      int64                   `json:"seq"`
	Rule     string                  `json:"rule"`
	Class    ir.ClassID              `json:"class"`
	Bindings map[string][]ir.ClassID `json:"bindings"`
	Result   ir.ClassID              `json:"result"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	// Passes holds one report per rewrite pass, in order.
	Passes []rewrite.PassReport `json:"passes"`

	// Trace holds every firing ordered by seq.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Size of the final graph.
	Classes int `json:"classes"`
	Nodes   int `json:"nodes"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Passes: []rewrite.PassReport{},
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddFiring appends a stored firing to the trace.
func (r *Result) AddFiring(f ir.Firing) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:      f.Seq,
		Rule:     f.Rule,
		Class:    f.ClassID,
		Bindings: f.Bindings,
		Result:   f.Result,
	})
}
