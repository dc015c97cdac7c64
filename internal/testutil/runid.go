package testutil

// FixedRunIDGenerator returns the same run id on every call.
//
// Scenario golden files embed the run id, so every run of a scenario must
// produce the same one. rewrite.FixedGenerator hands out a list of ids in
// order instead.
type FixedRunIDGenerator struct {
	id string
}

// DefaultRunID is used when a scenario does not name its run.
const DefaultRunID = "test-run-default"

// NewFixedRunIDGenerator creates a generator for id, or DefaultRunID if id
// is empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
