package rewrite

import (
	"sync"

	"github.com/roach88/eqsat/internal/ir"
)

// firedSet tracks which (rule, class, binding_hash) triples have fired in a
// run.
//
// A later pass finds every match of the previous passes again, because the
// graph only grows. Re-applying them would only re-add existing nodes, so
// the runner skips them. The persistent firing log enforces the same
// identity with a UNIQUE constraint.
type firedSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFiredSet() *firedSet {
	return &firedSet{seen: make(map[string]bool)}
}

func firedKey(rule string, class ir.ClassID, bindingHash string) string {
	return rule + ":" + class.String() + ":" + bindingHash
}

// has reports whether the triple already fired.
func (f *firedSet) has(rule string, class ir.ClassID, bindingHash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[firedKey(rule, class, bindingHash)]
}

// record marks the triple as fired.
func (f *firedSet) record(rule string, class ir.ClassID, bindingHash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[firedKey(rule, class, bindingHash)] = true
}

// size returns the number of distinct firings recorded.
func (f *firedSet) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
