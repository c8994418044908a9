// Package models defines the data structures shared by the reasoning core.
package models

import (
	"strings"
	"unicode"
)

// NormalizeKey folds a name or alias into its lookup form: lowercase,
// trimmed, with runs of whitespace, hyphens and underscores collapsed to a
// single space. "L-Ascorbic_Acid" and "l ascorbic  acid" share a key.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// PairKey returns the canonical ordering of an unordered id pair.
func PairKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
