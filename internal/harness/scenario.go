package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eqsat/internal/ir"
)

// Scenario defines a rewrite scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is an optional fixed run id. Defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Terms are ground s-expressions added to the graph in order.
	Terms []string `yaml:"terms"`

	// Unions are pairs of ground terms merged before the first pass.
	// Terms not already in the graph are added.
	Unions [][]string `yaml:"unions,omitempty"`

	// Rules are applied in order on every pass.
	Rules []RuleStep `yaml:"rules"`

	// Passes is the number of rewrite passes. Zero runs no pass.
	Passes int `yaml:"passes"`

	// Assertions validate the final graph and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// RuleStep is one rewrite rule in textual form.
type RuleStep struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Searcher    string `yaml:"searcher"`
	Applier     string `yaml:"applier"`
}

// Spec converts the step to the compiler's rule record.
func (r RuleStep) Spec() ir.RuleSpec {
	return ir.RuleSpec{
		Name:        r.Name,
		Description: r.Description,
		Searcher:    r.Searcher,
		Applier:     r.Applier,
	}
}

// Assertion validates the final graph or trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "equivalent": Terms all share one class
	// - "not_equivalent": the two Terms are in different classes
	// - "match_count": Pattern yields Count binding tables
	// - "class_count": the graph has Count classes
	// - "fire_count": Rule fired Count times
	Type string `yaml:"type"`

	// Terms are ground s-expressions (equivalent, not_equivalent).
	Terms []string `yaml:"terms,omitempty"`

	// Pattern is searched over the final graph (match_count).
	Pattern string `yaml:"pattern,omitempty"`

	// Rule is a rule name (fire_count).
	Rule string `yaml:"rule,omitempty"`

	// Count is the expected number (match_count, class_count, fire_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEquivalent    = "equivalent"
	AssertNotEquivalent = "not_equivalent"
	AssertMatchCount    = "match_count"
	AssertClassCount    = "class_count"
	AssertFireCount     = "fire_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and well formed.
// Pattern and term syntax is checked when the scenario runs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Terms) == 0 {
		return fmt.Errorf("terms list is required and must be non-empty")
	}

	if s.Passes < 0 {
		return fmt.Errorf("passes must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, pair := range s.Unions {
		if len(pair) != 2 {
			return fmt.Errorf("unions[%d]: expected a pair of terms, got %d", i, len(pair))
		}
	}

	for i, rule := range s.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rules[%d]: name is required", i)
		}
		if rule.Searcher == "" {
			return fmt.Errorf("rules[%d]: searcher is required", i)
		}
		if rule.Applier == "" {
			return fmt.Errorf("rules[%d]: applier is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEquivalent:
		if len(a.Terms) < 2 {
			return fmt.Errorf("assertions[%d]: at least two terms are required for equivalent", index)
		}
	case AssertNotEquivalent:
		if len(a.Terms) != 2 {
			return fmt.Errorf("assertions[%d]: exactly two terms are required for not_equivalent", index)
		}
	case AssertMatchCount:
		if a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: pattern is required for match_count", index)
		}
	case AssertFireCount:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for fire_count", index)
		}
	case AssertClassCount:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
	}

	return nil
}
