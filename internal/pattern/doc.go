// Package pattern implements structural pattern matching and instantiation
// over an e-graph.
//
// A Pattern is a tree of Node values (an operator with pattern children) and
// Wildcard leaves. Matching a pattern against an e-class enumerates every way
// the pattern fits some enode of that class, producing one WildMap (binding
// table) per fit. Instantiating a pattern against a WildMap rebuilds the
// term it describes and hash-conses it into the graph.
//
// # Wildcards
//
// A Single wildcard (textual form "?x") binds exactly one class. A
// ZeroOrMore wildcard (textual form "?xs...") binds the possibly empty run
// of trailing children of an enode. A ZeroOrMore wildcard may only be the
// last child of a node, and a node may carry at most one. Every occurrence of
// one name within a pattern denotes the same variable: sibling subtrees that
// bind it to different classes do not match together.
//
// # Matching rules
//
//   - Wildcard: binds the class itself
//   - Leaf node: matches if any enode of the class is a leaf with the same
//     operator; yields a single empty table no matter how many do
//   - Interior node: for every enode with the same operator and compatible
//     arity, the children are matched position by position and the
//     per-position candidate tables are combined by cartesian product,
//     dropping combinations that disagree on a shared wildcard
//
// Tables from different enodes of one class are concatenated without
// deduplication, so result cardinality reflects enode multiplicity.
//
// # Two-phase discipline
//
// Search only reads the graph and returns SearchMatches that hold no
// reference into it. Apply mutates the graph. Callers must finish every
// search of a batch before applying any of it, and must not expect class ids
// inside a SearchMatches to stay canonical across a union.
//
// # Contract violations
//
// Malformed patterns (misplaced or repeated ZeroOrMore wildcards), kind
// mismatches, and instantiating against an incomplete WildMap panic. Use
// Validate or Compile to reject malformed patterns up front. ToTerm on a
// pattern with wildcards is an ordinary error (UnresolvedWildcardError).
package pattern
