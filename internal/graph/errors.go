package graph

import "errors"

// Sentinel errors for graph construction and lookup.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownIngredient indicates a name or alias that matches no ingredient.
	// Recoverable: callers should offer suggestions or ask again.
	ErrUnknownIngredient = errors.New("unknown ingredient")

	// ErrInvalidRuleData indicates malformed ingredient or interaction data.
	// Fatal at build time; no graph is returned alongside it.
	ErrInvalidRuleData = errors.New("invalid rule data")
)
