package routine

import (
	"fmt"
	"slices"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// order sorts one slot. Apply-first rules between members are hard
// precedence constraints; among the members free to go next, the default
// order (category rank, then key) decides. A cycle among rules is broken
// with the default order and reported.
func (s *Sequencer) order(entries []*entry, slot models.Slot) ([]*entry, []models.Note) {
	members := inSlot(entries, slot)
	slices.SortFunc(members, compareEntries)
	n := len(members)

	succ := make([][]int, n)
	indegree := make([]int, n)
	linked := make(map[[2]int]bool)
	for _, e := range s.graph.EdgesBetween(unionIDs(members)) {
		if e.ApplyFirst == "" {
			continue
		}
		second := e.Other(e.ApplyFirst)
		for i, first := range members {
			if !first.has(e.ApplyFirst) {
				continue
			}
			for j, then := range members {
				if i == j || !then.has(second) || linked[[2]int{i, j}] {
					continue
				}
				linked[[2]int{i, j}] = true
				succ[i] = append(succ[i], j)
				indegree[j]++
			}
		}
	}

	var notes []models.Note
	out := make([]*entry, 0, n)
	done := make([]bool, n)
	for len(out) < n {
		pick := -1
		for i := range members {
			if !done[i] && indegree[i] == 0 {
				pick = i
				break
			}
		}
		if pick < 0 {
			for i := range members {
				if !done[i] {
					pick = i
					break
				}
			}
			notes = append(notes, models.Note{
				Kind:        models.NoteOrderCycle,
				Slot:        slot,
				Ingredients: slices.Clone(members[pick].ids),
				Message:     fmt.Sprintf("application-order rules around %s contradict each other; default order used", members[pick].name),
			})
		}

		done[pick] = true
		out = append(out, members[pick])
		for _, j := range succ[pick] {
			indegree[j]--
		}
	}

	return out, notes
}
