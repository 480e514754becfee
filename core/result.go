package core

import "fmt"

// Result is the fingerprint of one SQL statement.
type Result struct {
	Original   string   `json:"original"`   // The input text, unmodified
	Normalized string   `json:"normalized"` // Canonical text with values replaced by placeholders
	Hash       string   `json:"hash"`       // SHA-256 of Normalized, lowercase hex
	Params     []string `json:"params"`     // Extracted values in placeholder order
}

// String returns a compact diagnostic form. It is not meant for comparison.
func (result Result) String() string {
	hash := result.Hash
	if len(hash) > 8 {
		hash = hash[:8]
	}
	normalized := result.Normalized
	if runes := []rune(normalized); len(runes) > 50 {
		normalized = string(runes[:50]) + "..."
	}
	return fmt.Sprintf("NormalizeResult(hash='%s', normalized='%s')", hash, normalized)
}
