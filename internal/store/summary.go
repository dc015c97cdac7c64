package store

import (
	"context"
	"fmt"

	"github.com/roach88/eqsat/internal/ir"
)

// RuleCount is the number of firings of one rule in a run.
type RuleCount struct {
	Rule    string `json:"rule"`
	Firings int    `json:"firings"`
}

// RunSummary describes a run for reporting and for resuming its clock.
type RunSummary struct {
	Run     ir.Run      `json:"run"`
	Firings int         `json:"firings"`
	PerRule []RuleCount `json:"per_rule"` // ordered by rule name
	LastSeq int64       `json:"last_seq"` // 0 if the run has no firings
}

// GetRunSummary aggregates the firings of a run.
// Returns sql.ErrNoRows (wrapped) if the run does not exist.
func (s *Store) GetRunSummary(ctx context.Context, runID string) (RunSummary, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("get run summary: %w", err)
	}
	summary := RunSummary{Run: run, PerRule: []RuleCount{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, COUNT(*), MAX(seq)
		FROM firings
		WHERE run_id = ?
		GROUP BY rule
		ORDER BY rule COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return summary, fmt.Errorf("get run summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rc RuleCount
		var maxSeq int64
		if err := rows.Scan(&rc.Rule, &rc.Firings, &maxSeq); err != nil {
			return summary, fmt.Errorf("scan rule count: %w", err)
		}
		summary.PerRule = append(summary.PerRule, rc)
		summary.Firings += rc.Firings
		summary.LastSeq = max(summary.LastSeq, maxSeq)
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("iterate rule counts: %w", err)
	}

	return summary, nil
}
