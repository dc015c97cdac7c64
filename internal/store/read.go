package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/eqsat/internal/ir"
)

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	var run ir.Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, rules_hash, passes, engine_version
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.RulesHash, &run.Passes, &run.Version)
	if err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

// ReadRuns returns every run ordered by id. UUIDv7 ids sort by creation time.
func (s *Store) ReadRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rules_hash, passes, engine_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var run ir.Run
		if err := rows.Scan(&run.ID, &run.RulesHash, &run.Passes, &run.Version); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadFirings returns all firings of a run ordered by seq ASC, id ASC.
//
// Returns an empty slice (not nil) if the run has no firings.
func (s *Store) ReadFirings(ctx context.Context, runID string) ([]ir.Firing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, rule, class_id, binding_hash, bindings, result, seq
		FROM firings
		WHERE run_id = ?
		ORDER BY seq ASC, id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	firings := []ir.Firing{}
	for rows.Next() {
		f, err := scanFiring(rows)
		if err != nil {
			return nil, err
		}
		firings = append(firings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}
	return firings, nil
}

// scanFiring scans a row into a Firing struct.
func scanFiring(rows *sql.Rows) (ir.Firing, error) {
	var f ir.Firing
	var classID, result uint32
	var bindingsJSON string

	if err := rows.Scan(
		&f.ID, &f.RunID, &f.Rule, &classID, &f.BindingHash,
		&bindingsJSON, &result, &f.Seq,
	); err != nil {
		return ir.Firing{}, fmt.Errorf("scan firing: %w", err)
	}

	f.ClassID = ir.ClassID(classID)
	f.Result = ir.ClassID(result)

	bindings, err := unmarshalBindings(bindingsJSON)
	if err != nil {
		return ir.Firing{}, err
	}
	f.Bindings = bindings

	return f, nil
}
