package store

import (
	"context"
	"testing"

	"github.com/roach88/eqsat/internal/ir"
)

func TestWriteRun_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := mustWriteRun(t, s, "run-1")

	run.Passes = 3
	run.RulesHash = "changed"
	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("second WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Passes != 3 {
		t.Errorf("passes = %d, want 3", got.Passes)
	}
	if got.RulesHash != "rules-hash" {
		t.Errorf("rules_hash = %q, want original %q", got.RulesHash, "rules-hash")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if count != 1 {
		t.Errorf("runs = %d, want 1", count)
	}
}

func TestWriteFiring_Basic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, "run-1")

	f := testFiring("run-1", "comm-add", 3, 1, map[string][]ir.ClassID{
		"?a": {1},
		"?b": {2},
	})

	id, inserted, err := s.WriteFiring(ctx, f)
	if err != nil {
		t.Fatalf("WriteFiring() failed: %v", err)
	}
	if !inserted {
		t.Error("inserted = false, want true")
	}
	if id <= 0 {
		t.Errorf("id = %d, want > 0", id)
	}

	var rule, bindings string
	var classID, result uint32
	err = s.db.QueryRow(`
		SELECT rule, class_id, bindings, result FROM firings WHERE id = ?
	`, id).Scan(&rule, &classID, &bindings, &result)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if rule != "comm-add" {
		t.Errorf("rule = %q, want %q", rule, "comm-add")
	}
	if classID != 3 {
		t.Errorf("class_id = %d, want 3", classID)
	}
	if result != 103 {
		t.Errorf("result = %d, want 103", result)
	}
	if bindings != `{"?a":[1],"?b":[2]}` {
		t.Errorf("bindings = %s, want canonical JSON", bindings)
	}
}

func TestWriteFiring_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, "run-1")

	f := testFiring("run-1", "comm-add", 3, 1, map[string][]ir.ClassID{"?a": {1}, "?b": {2}})

	id1, inserted1, err := s.WriteFiring(ctx, f)
	if err != nil {
		t.Fatalf("first WriteFiring() failed: %v", err)
	}
	f.Seq = 7
	id2, inserted2, err := s.WriteFiring(ctx, f)
	if err != nil {
		t.Fatalf("second WriteFiring() failed: %v", err)
	}

	if !inserted1 || inserted2 {
		t.Errorf("inserted = (%v, %v), want (true, false)", inserted1, inserted2)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %d vs %d", id1, id2)
	}

	firings, err := s.ReadFirings(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadFirings() failed: %v", err)
	}
	if len(firings) != 1 {
		t.Fatalf("got %d firings, want 1", len(firings))
	}
	if firings[0].Seq != 1 {
		t.Errorf("seq = %d, want first write's 1", firings[0].Seq)
	}
}

func TestWriteFiring_DistinctIdentities(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, "run-1")
	mustWriteRun(t, s, "run-2")

	base := map[string][]ir.ClassID{"?a": {1}}
	firings := []ir.Firing{
		testFiring("run-1", "r", 1, 1, base),
		// other class
		testFiring("run-1", "r", 2, 2, base),
		// other rule
		testFiring("run-1", "s", 1, 3, base),
		// other bindings
		testFiring("run-1", "r", 1, 4, map[string][]ir.ClassID{"?a": {2}}),
		// other run
		testFiring("run-2", "r", 1, 1, base),
	}

	for i, f := range firings {
		_, inserted, err := s.WriteFiring(ctx, f)
		if err != nil {
			t.Fatalf("WriteFiring(%d) failed: %v", i, err)
		}
		if !inserted {
			t.Errorf("firing %d was not inserted", i)
		}
	}
}

func TestWriteFiring_RequiresRun(t *testing.T) {
	s := openTestStore(t)

	f := testFiring("missing", "r", 1, 1, map[string][]ir.ClassID{})
	if _, _, err := s.WriteFiring(context.Background(), f); err == nil {
		t.Error("WriteFiring() expected foreign key error for unknown run")
	}
}

func TestWriteFiring_EmptyTail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, "run-1")

	f := testFiring("run-1", "drop-args", 1, 1, map[string][]ir.ClassID{"?xs...": nil})
	if _, _, err := s.WriteFiring(ctx, f); err != nil {
		t.Fatalf("WriteFiring() failed: %v", err)
	}

	firings, err := s.ReadFirings(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadFirings() failed: %v", err)
	}
	ids, ok := firings[0].Bindings["?xs..."]
	if !ok {
		t.Fatal("empty tail binding lost")
	}
	if len(ids) != 0 {
		t.Errorf("?xs... = %v, want empty", ids)
	}
}

func TestHasFiring(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, "run-1")

	f := testFiring("run-1", "r", 4, 1, map[string][]ir.ClassID{"?a": {1}})

	has, err := s.HasFiring(ctx, "run-1", "r", 4, f.BindingHash)
	if err != nil {
		t.Fatalf("HasFiring() failed: %v", err)
	}
	if has {
		t.Error("HasFiring() = true before write")
	}

	if _, _, err := s.WriteFiring(ctx, f); err != nil {
		t.Fatalf("WriteFiring() failed: %v", err)
	}

	has, err = s.HasFiring(ctx, "run-1", "r", 4, f.BindingHash)
	if err != nil {
		t.Fatalf("HasFiring() failed: %v", err)
	}
	if !has {
		t.Error("HasFiring() = false after write")
	}

	has, err = s.HasFiring(ctx, "run-1", "r", 5, f.BindingHash)
	if err != nil {
		t.Fatalf("HasFiring() failed: %v", err)
	}
	if has {
		t.Error("HasFiring() matched a different class")
	}
}
