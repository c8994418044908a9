package routine

import (
	"fmt"
	"slices"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// clash is a conflict finding mapped onto the entries holding its two
// ingredients. a == b means the conflict sits inside one product.
type clash struct {
	a, b    *entry
	finding conflict.Finding
}

func (c clash) key() string {
	return c.a.key + "|" + c.b.key + "|" + c.finding.A + "|" + c.finding.B
}

func (c clash) involves(e *entry) bool { return c.a == e || c.b == e }

// clashes runs the detector over a slot and returns entry-level conflicts
// in detector order (severity descending, then pair).
func (s *Sequencer) clashes(entries []*entry, slot models.Slot) []clash {
	members := inSlot(entries, slot)
	report := s.detector.Classify(unionIDs(members))

	var out []clash
	seen := make(map[string]bool)
	for _, f := range report.Conflicts {
		for i, ea := range members {
			if !ea.has(f.A) {
				continue
			}
			for j, eb := range members {
				if !eb.has(f.B) {
					continue
				}
				c := clash{a: ea, b: eb, finding: f}
				if j < i {
					c.a, c.b = eb, ea
				}
				if k := c.key(); !seen[k] {
					seen[k] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// separate resolves same-slot conflicts by moving an "either" member to the
// other slot when it introduces no conflict there. Every move removes at
// least one clash and adds none, so the loop terminates.
func (s *Sequencer) separate(entries []*entry, slot models.Slot) ([]UnresolvedConflict, []models.Note) {
	var (
		unresolved []UnresolvedConflict
		notes      []models.Note
		handled    = make(map[string]bool)
	)

	for {
		var next *clash
		current := s.clashes(entries, slot)
		for i := range current {
			if !handled[current[i].key()] {
				next = &current[i]
				break
			}
		}
		if next == nil {
			return unresolved, notes
		}

		if next.a != next.b {
			if mover := s.pickMove(entries, slot, *next, current); mover != nil {
				mover.set(slot, false)
				mover.set(slot.Other(), true)
				notes = append(notes, models.Note{
					Kind:        models.NoteMoved,
					Slot:        slot.Other(),
					Ingredients: slices.Clone(mover.ids),
					Message: fmt.Sprintf("%s moved to %s to keep it apart from %s: %s",
						mover.name, slot.Other(), other(*next, mover).name, next.finding.Explanation),
				})
				continue
			}
		}

		handled[next.key()] = true
		unresolved = append(unresolved, UnresolvedConflict{
			Slot:           slot,
			ItemA:          next.a.name,
			ItemB:          next.b.name,
			A:              next.finding.A,
			B:              next.finding.B,
			Explanation:    next.finding.Explanation,
			Recommendation: next.finding.Recommendation,
			Severity:       next.finding.Severity,
		})
	}
}

func other(c clash, e *entry) *entry {
	if c.a == e {
		return c.b
	}
	return c.a
}

// pickMove returns the member of c that can legally change slot, or nil.
// The member involved in more clashes is tried first; ties try the one
// that sorts later in the slot.
func (s *Sequencer) pickMove(entries []*entry, slot models.Slot, c clash, current []clash) *entry {
	count := func(e *entry) int {
		n := 0
		for _, x := range current {
			if x.a != x.b && x.involves(e) {
				n++
			}
		}
		return n
	}

	candidates := []*entry{c.b, c.a}
	if count(c.a) > count(c.b) {
		candidates = []*entry{c.a, c.b}
	}
	for _, e := range candidates {
		if e.tod != models.Either || !e.tod.Allows(slot.Other()) {
			continue
		}
		if s.fits(entries, e, slot.Other()) {
			return e
		}
	}
	return nil
}

// fits reports whether e can join target without a cross-item conflict.
func (s *Sequencer) fits(entries []*entry, e *entry, target models.Slot) bool {
	was := e.in(target)
	e.set(target, true)
	defer e.set(target, was)

	for _, c := range s.clashes(entries, target) {
		if c.a != c.b && c.involves(e) {
			return false
		}
	}
	return true
}
