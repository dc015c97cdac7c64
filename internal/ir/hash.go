package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainBinding = "eqsat/binding/v1"
	DomainRules   = "eqsat/rules/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BindingHash computes the identity of one binding table, keyed by
// wildcard name. Used for firing idempotency: the same rule applied to the
// same class with the same bindings is recorded once per run.
func BindingHash(bindings map[string][]ClassID) (string, error) {
	canonical, err := MarshalCanonical(bindings)
	if err != nil {
		return "", fmt.Errorf("BindingHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBinding, canonical), nil
}

// RulesHash computes the identity of an ordered rule set.
func RulesHash(rules []RuleSpec) (string, error) {
	list := make([]any, len(rules))
	for i, r := range rules {
		list[i] = map[string]any{
			"name":     r.Name,
			"searcher": r.Searcher,
			"applier":  r.Applier,
		}
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("RulesHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRules, canonical), nil
}

// MustBindingHash is like BindingHash but panics on error.
// Binding tables only hold strings and ids, so this cannot fail in practice.
func MustBindingHash(bindings map[string][]ClassID) string {
	h, err := BindingHash(bindings)
	if err != nil {
		panic(err)
	}
	return h
}
