package models

// RelationKind is the type of a pairwise interaction.
type RelationKind string

const (
	KindConflict RelationKind = "conflict"
	KindCaution  RelationKind = "caution"
	KindSynergy  RelationKind = "synergy"
)

// RelationKinds lists kinds from strongest to weakest.
var RelationKinds = []RelationKind{KindConflict, KindCaution, KindSynergy}

// Severity bounds for interaction edges.
const (
	MinSeverity = 1
	MaxSeverity = 10
)

// Strength orders kinds for dominance: a pair is classified by its
// strongest edge. Unknown kinds have strength 0.
func (k RelationKind) Strength() int {
	switch k {
	case KindConflict:
		return 3
	case KindCaution:
		return 2
	case KindSynergy:
		return 1
	}
	return 0
}

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	return k.Strength() > 0
}

// InteractionEdge is an explained relationship between two ingredients.
// A and B are stored in ascending order; the pair is unordered.
type InteractionEdge struct {
	A              string       `json:"a"`
	B              string       `json:"b"`
	Kind           RelationKind `json:"kind"`
	Explanation    string       `json:"explanation"`
	Recommendation string       `json:"recommendation,omitempty"`
	// Severity is an ordinal weight (MinSeverity-MaxSeverity) used for
	// ranking and tie-breaks.
	Severity int `json:"severity"`
	// ApplyFirst, when set, is the member of the pair that goes on first
	// if both end up in the same slot.
	ApplyFirst string `json:"apply_first,omitempty"`
	// WaitMinutes is the suggested pause between the two applications.
	WaitMinutes int `json:"wait_minutes,omitempty"`
}

// Other returns the member of the pair that is not id.
func (e InteractionEdge) Other(id string) string {
	if e.A == id {
		return e.B
	}
	return e.A
}

// Involves reports whether id is a member of the pair.
func (e InteractionEdge) Involves(id string) bool {
	return e.A == id || e.B == id
}

// Normalized returns the edge with A and B in canonical order.
func (e InteractionEdge) Normalized() InteractionEdge {
	e.A, e.B = PairKey(e.A, e.B)
	return e
}
