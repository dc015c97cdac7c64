package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/eqsat/internal/ir"
	"github.com/roach88/eqsat/internal/pattern"
)

// CycleWarning reports rules that can feed each other's searchers.
//
// Feedback between rules is normal in equality saturation (commutativity
// re-matches its own output), so these are informational: they explain why
// a rule set keeps growing the graph and needs a bounded number of passes.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["rule-a", "rule-b", "rule-a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "info"
}

// AnalyzeCycles performs static feedback analysis on a rule set.
//
// Rule A feeds rule B when A's applier builds a node whose operator is the
// root operator of B's searcher. Strongly connected components of that
// graph, and self-loops, are reported. Rules whose patterns do not parse are
// skipped; Validate reports them.
//
// Rules are visited in declaration order so the output is deterministic.
func AnalyzeCycles(specs []ir.RuleSpec) []CycleWarning {
	if len(specs) == 0 {
		return []CycleWarning{}
	}

	graph, order := buildDependencyGraph(specs)
	sccs := tarjanSCC(graph, order)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// dependencyGraph maps rule name → rules whose searchers it can feed.
type dependencyGraph map[string][]string

// buildDependencyGraph constructs the rule feedback graph and returns the
// rule names in declaration order.
func buildDependencyGraph(specs []ir.RuleSpec) (dependencyGraph, []string) {
	graph := make(dependencyGraph)
	var order []string

	// root operator → rules whose searcher is rooted there
	opToRules := make(map[string][]string)
	built := make(map[string]map[string]bool)
	for _, spec := range specs {
		searcher, err := pattern.Parse(spec.Searcher)
		if err != nil {
			continue
		}
		applier, err := pattern.Parse(spec.Applier)
		if err != nil {
			continue
		}
		order = append(order, spec.Name)
		graph[spec.Name] = []string{}
		if root, ok := searcher.(pattern.Node); ok {
			opToRules[root.Op] = append(opToRules[root.Op], spec.Name)
		}
		built[spec.Name] = operators(applier)
	}

	for _, name := range order {
		for _, target := range order {
			for op := range built[name] {
				if slices.Contains(opToRules[op], target) {
					graph[name] = append(graph[name], target)
					break
				}
			}
		}
	}

	return graph, order
}

// operators returns the operators of every node in p.
func operators(p pattern.Pattern) map[string]bool {
	ops := make(map[string]bool)
	var walk func(pattern.Pattern)
	walk = func(p pattern.Pattern) {
		if n, ok := p.(pattern.Node); ok {
			ops[n.Op] = true
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(p)
	return ops
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of rule names.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				// Successor w has not yet been visited; recurse on it
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Successor w is on stack and hence in the current SCC
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Visit all nodes
	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
//
// The path shows the cycle sequence by reconstructing a path through the SCC.
// For self-loops, the path is [rule, rule].
// For multi-node cycles, the path shows a cycle traversal.
func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("rule re-matches its own output: %s → %s", name, name),
			Level:   "info",
		}
	}

	// Multi-node cycle - reconstruct a cycle path
	path := reconstructCyclePath(scc, graph)

	pathStr := strings.Join(path, " → ")
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("rules feed each other: %s", pathStr),
		Level:   "info",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	// Build set of SCC members for fast lookup
	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	// Start at first node
	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	// Follow edges within SCC until we return to start
	for {
		visited[current] = true

		// Find next SCC member reachable from current
		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			// No more unvisited neighbors in SCC
			break
		}

		path = append(path, next)

		if next == start {
			// Completed the cycle
			break
		}

		current = next
	}

	return path
}
