package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Rule     string // optional - filter to a specific rule
}

// TraceEvent represents a single firing in the trace timeline.
type TraceEvent struct {
	Seq      int64                   `json:"seq"`
	Rule     string                  `json:"rule"`
	Class    ir.ClassID              `json:"class"`
	Bindings map[string][]ir.ClassID `json:"bindings"`
	Result   ir.ClassID              `json:"result"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID     string            `json:"run_id"`
	RulesHash string            `json:"rules_hash"`
	Passes    int               `json:"passes"`
	Timeline  []TraceEvent      `json:"timeline"`
	PerRule   []store.RuleCount `json:"per_rule"`
	Firings   int               `json:"firings"`
	LastSeq   int64             `json:"last_seq"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the firing log of a rewrite run",
		Long: `Show the firings recorded by "eqsat rewrite --db".

The output includes:
- Timeline: every firing in sequence order with its bindings
- Stats: firings per rule for the whole run

Without --run the most recent run in the database is shown.

Examples:
  eqsat trace --db ./eqsat.db
  eqsat trace --db ./eqsat.db --run 0192f3a4-... --rule comm-add
  eqsat trace --db ./eqsat.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to trace (default: latest run)")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "filter to a specific rule")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runID := opts.RunID
	if runID == "" {
		runs, err := st.ReadRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read runs", err)
		}
		if len(runs) == 0 {
			if opts.Format == "json" {
				return outputTraceJSON(cmd, TraceResult{
					Timeline: []TraceEvent{},
					PerRule:  []store.RuleCount{},
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database")
			return nil
		}
		// UUIDv7 ids sort by creation time.
		runID = runs[len(runs)-1].ID
	}

	summary, err := st.GetRunSummary(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: run not found: %s", ErrCodeNotFound, runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run summary", err)
	}

	firings, err := st.ReadFirings(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read firings", err)
	}

	result := TraceResult{
		RunID:     summary.Run.ID,
		RulesHash: summary.Run.RulesHash,
		Passes:    summary.Run.Passes,
		Timeline:  buildTimeline(firings, opts.Rule),
		PerRule:   summary.PerRule,
		Firings:   summary.Firings,
		LastSeq:   summary.LastSeq,
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}

	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTimeline converts stored firings to timeline events. When
// ruleFilter is set, only firings of that rule are included.
func buildTimeline(firings []ir.Firing, ruleFilter string) []TraceEvent {
	timeline := []TraceEvent{}
	for _, f := range firings {
		if ruleFilter != "" && f.Rule != ruleFilter {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:      f.Seq,
			Rule:     f.Rule,
			Class:    f.ClassID,
			Bindings: f.Bindings,
			Result:   f.Result,
		})
	}
	return timeline
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.RunID,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Passes: %d\n", result.Passes)
	if verbose {
		fmt.Fprintf(w, "Rules Hash: %s\n", result.RulesHash)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no firings)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Firings:  %d\n", result.Firings)
	fmt.Fprintf(w, "  Last Seq: %d\n", result.LastSeq)
	for _, rc := range result.PerRule {
		fmt.Fprintf(w, "  %s: %d\n", rc.Rule, rc.Firings)
	}

	return nil
}

// formatTimelineEvent formats a single firing for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent) {
	fmt.Fprintf(w, "  [%d] %s class %d %s → %d\n",
		event.Seq, event.Rule, event.Class, formatBindings(event.Bindings), event.Result)
}

// formatBindings renders a binding table as "{?a: [0], ?b: [1 2]}".
// Keys are sorted for deterministic output.
func formatBindings(bindings map[string][]ir.ClassID) string {
	if len(bindings) == 0 {
		return "{}"
	}

	parts := make([]string, 0, len(bindings))
	for _, k := range ir.SortedKeys(bindings) {
		ids := make([]string, len(bindings[k]))
		for i, id := range bindings[k] {
			ids[i] = id.String()
		}
		parts = append(parts, fmt.Sprintf("%s: [%s]", k, strings.Join(ids, " ")))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
