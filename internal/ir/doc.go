// Package ir provides the shared vocabulary for eqsat.
//
// This package contains plain data types and identity helpers only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// ir the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Operator labels are strings; equality is byte equality after NFC
//     normalization at serialization boundaries
//   - ClassID values are dense indices owned by the e-graph that issued them
//   - Logical clocks (seq) only, never wall-clock timestamps
//   - All JSON tags use snake_case
package ir
