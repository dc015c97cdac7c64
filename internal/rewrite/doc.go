// Package rewrite drives pattern-based rewrite rules over an e-graph.
//
// A Rewrite pairs a searcher with an applier. Applying a rule instantiates
// the applier under every binding table found by the searcher and unions the
// result with the matched class.
//
// TWO-PHASE DISCIPLINE:
//
// Runner.RunPass searches every rule before applying any of them. Matches
// are owned values, so they survive the mutations of the apply phase, but a
// search must never observe a half-applied pass. After the apply phase the
// graph is rebuilt so the next pass sees canonical ids and restored
// congruence.
//
// Each applied binding table is recorded as a firing. Within a run a
// (rule, class, binding) triple fires once; later passes that find the same
// match skip it. An optional FiringLog persists firings with the same
// identity, see internal/store.
//
// The runner does not detect saturation: it runs exactly the passes it is
// asked to run.
package rewrite
