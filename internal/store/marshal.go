package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/eqsat/internal/ir"
)

// marshalBindings converts a binding table to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so the stored text hashes to binding_hash.
func marshalBindings(bindings map[string][]ir.ClassID) (string, error) {
	if bindings == nil {
		bindings = map[string][]ir.ClassID{}
	}
	data, err := ir.MarshalCanonical(bindings)
	if err != nil {
		return "", fmt.Errorf("marshal bindings: %w", err)
	}
	return string(data), nil
}

// unmarshalBindings parses stored binding JSON.
func unmarshalBindings(data string) (map[string][]ir.ClassID, error) {
	bindings := map[string][]ir.ClassID{}
	if data == "" || data == "{}" {
		return bindings, nil
	}
	if err := json.Unmarshal([]byte(data), &bindings); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", err)
	}
	for name, ids := range bindings {
		if ids == nil {
			bindings[name] = []ir.ClassID{}
		}
	}
	return bindings, nil
}
