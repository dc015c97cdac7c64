package ir

// RuleSpec is a compiled rewrite rule in textual form.
// Searcher and Applier hold s-expression patterns, e.g. "(+ ?a ?b)".
type RuleSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Searcher    string `json:"searcher"`
	Applier     string `json:"applier"`
}

// Run describes one invocation of the rewrite driver.
type Run struct {
	ID        string `json:"id"`         // UUIDv7 in production, fixed in tests
	RulesHash string `json:"rules_hash"` // Hash of the rule set, see RulesHash
	Passes    int    `json:"passes"`
	Version   string `json:"version"`
}

// Firing records one binding table of one match being applied.
//
// NOTE: ClassID and Result are the ids as they were when the firing was
// applied. They may be stale after later unions.
type Firing struct {
	ID          int64                `json:"id"` // Auto-increment (store)
	RunID       string               `json:"run_id"`
	Rule        string               `json:"rule"`
	ClassID     ClassID              `json:"class_id"`
	BindingHash string               `json:"binding_hash"`
	Bindings    map[string][]ClassID `json:"bindings"`
	Result      ClassID              `json:"result"`
	Seq         int64                `json:"seq"`
}
