package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roach88/eqsat/internal/compiler"
	"github.com/roach88/eqsat/internal/egraph"
	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/rewrite"
	"github.com/roach88/eqsat/internal/store"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	Passes     int
	MaxFirings int
	DBPath     string
	RunID      string
}

// RewriteResult holds the outcome of a rewrite run.
type RewriteResult struct {
	RunID        string               `json:"run_id"`
	Rules        int                  `json:"rules"`
	Passes       []rewrite.PassReport `json:"passes"`
	Classes      int                  `json:"classes"`
	Nodes        int                  `json:"nodes"`
	Terms        []TermClass          `json:"terms"`
	Equivalences [][]string           `json:"equivalences"`
}

// TermClass is the final canonical class of an input term.
type TermClass struct {
	Term  string     `json:"term"`
	Class ir.ClassID `json:"class"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite <rules-dir> <term>...",
		Short: "Apply rules to a graph built from terms",
		Long: `Build an e-graph from the given terms and apply the rules for a fixed
number of passes. Each pass searches every rule before applying any, then
rebuilds the graph.

With --db, the run and every firing are recorded in a SQLite database and
can be inspected with "eqsat trace".

Example:
  eqsat rewrite ./rules "(+ (* a 1) 0)" a --passes 2`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Passes, "passes", "n", 1, "number of passes to run")
	cmd.Flags().IntVar(&opts.MaxFirings, "max-firings", 0, "stop once more firings would be applied (0 = no limit)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database for the firing log")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run id (default: generated UUIDv7)")

	return cmd
}

func runRewrite(opts *RewriteOptions, rulesDir string, terms []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Passes < 0 {
		return outputRewriteError(formatter, ErrCodeGeneric, fmt.Sprintf("passes must be non-negative, got %d", opts.Passes))
	}

	loadResult, loadErrors := LoadRules(rulesDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputRewriteError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputRewriteError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}
	if verrs := compiler.Validate(loadResult.Rules); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return outputCompileErrors(formatter, errs)
	}
	rules, err := compiler.Build(loadResult.Rules)
	if err != nil {
		return outputRewriteError(formatter, ErrCodeGeneric, err.Error())
	}

	g, ids, err := buildGraph(terms)
	if err != nil {
		return outputRewriteError(formatter, ErrCodeInvalidTerm, err.Error())
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	runnerOpts := []rewrite.Option{
		rewrite.WithLogger(logger),
		rewrite.WithMaxFirings(opts.MaxFirings),
	}
	if opts.RunID != "" {
		runnerOpts = append(runnerOpts, rewrite.WithRunID(opts.RunID))
	}
	if opts.DBPath != "" {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return outputRewriteError(formatter, ErrCodeLoadFailed, fmt.Sprintf("opening database: %v", err))
		}
		defer st.Close()
		runnerOpts = append(runnerOpts, rewrite.WithFiringLog(st))
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	runner := rewrite.NewRunner(rules, runnerOpts...)
	formatter.VerboseLog("Run %s: %d rule(s), %d pass(es)", runner.RunID(), len(rules), opts.Passes)

	reports, err := runner.Run(ctx, g, opts.Passes)
	if rewrite.IsFiringLimitError(err) {
		return outputRewriteError(formatter, ErrCodeQuota, err.Error())
	}
	if err != nil {
		return outputRewriteError(formatter, ErrCodeGeneric, fmt.Sprintf("run %s: %v", runner.RunID(), err))
	}

	result := &RewriteResult{
		RunID:        runner.RunID(),
		Rules:        len(rules),
		Passes:       reports,
		Classes:      g.NumClasses(),
		Nodes:        g.NumNodes(),
		Terms:        make([]TermClass, len(terms)),
		Equivalences: equivalences(g, terms, ids),
	}
	for i, src := range terms {
		result.Terms[i] = TermClass{Term: src, Class: g.Find(ids[i])}
	}

	return outputRewriteSuccess(formatter, result)
}

// equivalences groups input terms that ended up in the same class. Groups
// and their members keep the order the terms were given in.
func equivalences(g *egraph.EGraph, terms []string, ids []ir.ClassID) [][]string {
	groups := make(map[ir.ClassID]int)
	out := [][]string{}
	var all [][]string
	for i, src := range terms {
		root := g.Find(ids[i])
		idx, ok := groups[root]
		if !ok {
			idx = len(all)
			groups[root] = idx
			all = append(all, nil)
		}
		all[idx] = append(all[idx], src)
	}
	for _, group := range all {
		if len(group) > 1 {
			out = append(out, group)
		}
	}
	return out
}

// cmdContext returns the command's context, or Background when the command
// was executed without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func outputRewriteSuccess(formatter *OutputFormatter, result *RewriteResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "ok",
			Data:   result,
			RunID:  result.RunID,
		}
		return json.NewEncoder(formatter.Writer).Encode(response)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Rules: %d\n\n", result.Rules)

	for _, p := range result.Passes {
		fmt.Fprintf(w, "Pass %d: %d match(es), %d applied, %d skipped, %d union(s), %d rebuilt\n",
			p.Pass, p.Matches, p.Applied, p.Skipped, p.Unions, p.Rebuilt)
	}
	if len(result.Passes) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Graph: %d class(es), %d node(s)\n\n", result.Classes, result.Nodes)

	fmt.Fprintln(w, "Terms:")
	for _, t := range result.Terms {
		fmt.Fprintf(w, "  %s → class %d\n", t.Term, t.Class)
	}

	if len(result.Equivalences) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Equivalent:")
		for _, group := range result.Equivalences {
			fmt.Fprint(w, "  ")
			for i, src := range group {
				if i > 0 {
					fmt.Fprint(w, " ≡ ")
				}
				fmt.Fprint(w, src)
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}

func outputRewriteError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
