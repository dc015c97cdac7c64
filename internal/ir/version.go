package ir

// Version constants for persisted records.
const (
	// SchemaVersion is the version of the persisted run/firing records.
	SchemaVersion = "1"

	// EngineVersion is the eqsat engine version.
	EngineVersion = "0.1.0"
)
