package conflict

import (
	"slices"
)

// Removal records an ingredient dropped from a recommendation to break a conflict.
type Removal struct {
	ID            string `json:"id"`
	ConflictsWith string `json:"conflicts_with"`
	Explanation   string `json:"explanation"`
	Severity      int    `json:"severity"`
}

// Prune drops ingredients until the set has no conflict. The most severe
// conflict is broken first by removing the member with the lower weight;
// on equal weight the lexicographically larger id goes. The kept ids
// preserve input order.
func (d *Detector) Prune(ids []string, weight func(id string) float64) ([]string, []Removal) {
	kept := slices.Clone(ids)
	var removed []Removal

	for {
		r := d.Classify(kept)
		if len(r.Conflicts) == 0 {
			return kept, removed
		}

		c := r.Conflicts[0]
		victim, survivor := c.B, c.A
		if weight != nil {
			wa, wb := weight(c.A), weight(c.B)
			if wa < wb {
				victim, survivor = c.A, c.B
			}
		}

		kept = slices.DeleteFunc(kept, func(id string) bool { return id == victim })
		removed = append(removed, Removal{
			ID:            victim,
			ConflictsWith: survivor,
			Explanation:   c.Explanation,
			Severity:      c.Severity,
		})
	}
}
