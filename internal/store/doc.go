// Package store provides SQLite-backed durable storage for rewrite runs.
//
// The store is an append-only log with:
//   - Runs: one record per driver run (rule set hash, completed passes)
//   - Firings: one record per applied binding table
//
// # Binding-Level Idempotency
//
// UNIQUE(run_id, rule, class_id, binding_hash) makes a firing recordable
// once per run. WriteFiring reports whether the row was new.
//
// # Ordering
//
// Firings are ordered by seq INTEGER (the driver's logical clock), never by
// timestamps. Queries use ORDER BY seq ASC, id ASC so reads are identical
// across runs of the same rules on the same input.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Binding hashes are computed by ir.BindingHash using RFC 8785 canonical JSON
// and SHA-256 with domain separation.
package store
