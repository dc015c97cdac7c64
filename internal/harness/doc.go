// Package harness runs rewrite scenarios and checks their outcome.
//
// A scenario builds an e-graph from ground terms, applies optional initial
// unions, runs a rule set for a fixed number of passes and evaluates
// assertions against the final graph and the firing trace.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: commutativity
//	description: "a + b is equivalent to b + a"
//	run_id: run-comm
//	terms:
//	  - (+ x y)
//	unions:
//	  - [x, z]
//	rules:
//	  - name: comm-add
//	    searcher: (+ ?a ?b)
//	    applier: (+ ?b ?a)
//	passes: 2
//	assertions:
//	  - type: equivalent
//	    terms: ["(+ x y)", "(+ y x)"]
//	  - type: match_count
//	    pattern: (+ ?a ?b)
//	    count: 2
//
// # Assertion Types
//
//   - equivalent: every listed term is in the graph and in one class
//   - not_equivalent: two listed terms are in the graph and in different classes
//   - match_count: a pattern yields exactly count binding tables over the graph
//   - class_count: the graph has exactly count classes
//   - fire_count: a rule fired exactly count times
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with a fixed run id
// (testutil.FixedRunIDGenerator) and a logical clock
// (testutil.DeterministicClock). The firing trace is read back from the
// store, so golden snapshots also cover the persisted form.
package harness
