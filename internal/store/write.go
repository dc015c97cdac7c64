package store

import (
	"context"
	"fmt"

	"github.com/roach88/eqsat/internal/ir"
)

// WriteRun inserts a run record or updates the pass count of an existing one.
// The rules hash and engine version of an existing run are never changed.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, rules_hash, passes, engine_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET passes = excluded.passes
	`,
		run.ID,
		run.RulesHash,
		run.Passes,
		run.Version,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteFiring inserts a firing record into the store.
// Returns the ID and whether a new record was inserted.
//
// Uses ON CONFLICT(run_id, rule, class_id, binding_hash) DO NOTHING for
// binding-level idempotency. If the firing already exists, returns the
// existing ID and inserted=false.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteFiring(ctx context.Context, firing ir.Firing) (id int64, inserted bool, err error) {
	bindingsJSON, err := marshalBindings(firing.Bindings)
	if err != nil {
		return 0, false, fmt.Errorf("write firing: %w", err)
	}

	// Use a transaction to ensure atomicity of insert-or-select
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("write firing: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO firings
		(run_id, rule, class_id, binding_hash, bindings, result, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, rule, class_id, binding_hash) DO NOTHING
	`,
		firing.RunID,
		firing.Rule,
		uint32(firing.ClassID),
		firing.BindingHash,
		bindingsJSON,
		uint32(firing.Result),
		firing.Seq,
	)
	if err != nil {
		return 0, false, fmt.Errorf("write firing: insert: %w", err)
	}

	// Check if a row was actually inserted
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("write firing: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		id, err = result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("write firing: last insert id: %w", err)
		}
		inserted = true
	} else {
		// Conflict - row already exists, fetch the existing ID
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM firings
			WHERE run_id = ? AND rule = ? AND class_id = ? AND binding_hash = ?
		`, firing.RunID, firing.Rule, uint32(firing.ClassID), firing.BindingHash).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("write firing: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("write firing: commit: %w", err)
	}

	return id, inserted, nil
}

// HasFiring checks if a firing already exists for the given identity.
func (s *Store) HasFiring(ctx context.Context, runID, rule string, class ir.ClassID, bindingHash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM firings
		WHERE run_id = ? AND rule = ? AND class_id = ? AND binding_hash = ?
	`, runID, rule, uint32(class), bindingHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check firing: %w", err)
	}
	return count > 0, nil
}
