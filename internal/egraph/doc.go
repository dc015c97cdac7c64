// Package egraph implements a minimal e-graph: a union-find over class ids,
// a hash-cons memo from canonical enodes to classes, and a deferred rebuild
// that restores congruence after unions.
//
// The pattern engine consumes only the read side (Classes, Class, Find) and
// Add. Union and Rebuild belong to the rewrite driver.
//
// # Invariants after Rebuild
//
//   - Every enode's children are canonical (Find(c) == c)
//   - No two enodes anywhere in the graph are structurally equal
//   - Congruent enodes live in the same class
//
// Between a Union and the next Rebuild these invariants may not hold. Search
// results computed in that window may bind non-canonical ids.
//
// # Determinism
//
// Class iteration is in ascending canonical id order and each class keeps its
// enodes in insertion order. Unions pick the larger class as root, breaking
// ties toward the smaller id, so identical operation sequences produce
// identical graphs.
package egraph
