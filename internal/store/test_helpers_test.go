package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/eqsat/internal/ir"
)

// openTestStore opens a fresh store in a temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustWriteRun writes a run record for tests that need the foreign key.
func mustWriteRun(t *testing.T, s *Store, id string) ir.Run {
	t.Helper()
	run := ir.Run{
		ID:        id,
		RulesHash: "rules-hash",
		Passes:    0,
		Version:   ir.EngineVersion,
	}
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}

// testFiring builds a firing with a deterministic binding hash.
func testFiring(runID, rule string, class ir.ClassID, seq int64, bindings map[string][]ir.ClassID) ir.Firing {
	return ir.Firing{
		RunID:       runID,
		Rule:        rule,
		ClassID:     class,
		BindingHash: ir.MustBindingHash(bindings),
		Bindings:    bindings,
		Result:      class + 100,
		Seq:         seq,
	}
}
