// Package routine builds AM/PM routines: it assigns items to slots under
// time-of-day and conflict constraints, then orders each slot.
package routine

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// ErrTooManyItems is returned when a request exceeds Config.MaxItems.
var ErrTooManyItems = errors.New("too many routine items")

// DefaultMaxItems caps the number of items in one routine request.
const DefaultMaxItems = 20

// Config tunes a Sequencer.
type Config struct {
	MaxItems int
	// FlexibleSlot is where "either" items start before conflict moves.
	FlexibleSlot models.Slot
}

// DefaultConfig returns the standard sequencer configuration.
func DefaultConfig() Config {
	return Config{MaxItems: DefaultMaxItems, FlexibleSlot: models.SlotAM}
}

func (c Config) withDefaults() Config {
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.FlexibleSlot != models.SlotPM {
		c.FlexibleSlot = models.SlotAM
	}
	return c
}

// Item is one thing the user applies: a single ingredient (Ingredients
// empty, Name is the ingredient) or a named product with its ingredients.
type Item struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// UnresolvedConflict is a conflicting pair left in the same slot because
// no permitted move separates them. The routine is still produced.
type UnresolvedConflict struct {
	Slot           models.Slot `json:"slot"`
	ItemA          string      `json:"item_a"`
	ItemB          string      `json:"item_b"`
	A              string      `json:"a"`
	B              string      `json:"b"`
	Explanation    string      `json:"explanation"`
	Recommendation string      `json:"recommendation,omitempty"`
	Severity       int         `json:"severity"`
}

// Result is a built routine with its warnings and advisory notes.
// Empty is set when nothing could be scheduled; that is not an error.
type Result struct {
	Routine    models.Routine             `json:"routine"`
	Empty      bool                       `json:"empty"`
	Unresolved []UnresolvedConflict       `json:"unresolved"`
	Unknown    []models.UnknownIngredient `json:"unknown,omitempty"`
	Notes      []models.Note              `json:"notes"`
}

// entry is a resolved item during sequencing.
type entry struct {
	name      string
	key       string
	ids       []string
	tod       models.TimeOfDay
	category  models.Category
	sunscreen bool
	am, pm    bool
}

func (e *entry) in(s models.Slot) bool {
	if s == models.SlotAM {
		return e.am
	}
	return e.pm
}

func (e *entry) set(s models.Slot, v bool) {
	if s == models.SlotAM {
		e.am = v
	} else {
		e.pm = v
	}
}

func (e *entry) has(id string) bool {
	_, ok := slices.BinarySearch(e.ids, id)
	return ok
}

// compareEntries is the default order: category rank, then key.
func compareEntries(a, b *entry) int {
	return cmp.Or(
		a.category.Rank()-b.category.Rank(),
		strings.Compare(a.key, b.key),
	)
}

// Sequencer builds routines against one graph snapshot. Safe for concurrent use.
type Sequencer struct {
	detector *conflict.Detector
	graph    *graph.Graph
	cfg      Config
}

// NewSequencer creates a sequencer that uses d as its conflict oracle.
func NewSequencer(d *conflict.Detector, cfg Config) *Sequencer {
	return &Sequencer{detector: d, graph: d.Graph(), cfg: cfg.withDefaults()}
}

// Build schedules items into AM and PM slots. Profile is optional and only
// adds skin-type and avoid-list notes. No resolved item is ever dropped: it
// is placed, or its pair is listed as unresolved.
func (s *Sequencer) Build(items []Item, profile *models.SkinProfile) (Result, error) {
	if len(items) > s.cfg.MaxItems {
		return Result{}, fmt.Errorf("%w: %d given, at most %d", ErrTooManyItems, len(items), s.cfg.MaxItems)
	}

	res := Result{
		Routine:    models.Routine{AM: []models.RoutineStep{}, PM: []models.RoutineStep{}},
		Unresolved: []UnresolvedConflict{},
		Notes:      []models.Note{},
	}

	entries, unknown, notes := s.resolve(items)
	res.Unknown = unknown
	res.Notes = append(res.Notes, notes...)
	if len(entries) == 0 {
		res.Empty = true
		return res, nil
	}

	s.place(entries)
	for _, slot := range []models.Slot{models.SlotAM, models.SlotPM} {
		unresolved, moveNotes := s.separate(entries, slot)
		res.Unresolved = append(res.Unresolved, unresolved...)
		res.Notes = append(res.Notes, moveNotes...)
	}

	for _, slot := range []models.Slot{models.SlotAM, models.SlotPM} {
		ordered, orderNotes := s.order(entries, slot)
		steps := make([]models.RoutineStep, 0, len(ordered))
		for i, e := range ordered {
			steps = append(steps, models.RoutineStep{
				Slot:        slot,
				Position:    i + 1,
				Name:        e.name,
				Ingredients: slices.Clone(e.ids),
				Category:    e.category,
			})
		}
		if slot == models.SlotAM {
			res.Routine.AM = steps
		} else {
			res.Routine.PM = steps
		}
		res.Notes = append(res.Notes, orderNotes...)
		res.Notes = append(res.Notes, s.annotate(ordered, slot)...)
	}
	res.Notes = append(res.Notes, s.profileNotes(entries, profile)...)

	return res, nil
}

// resolve looks up every item. Unknown ingredients are collected; items
// with no known ingredient are not scheduled. Items resolving to the same
// ingredient set are merged.
func (s *Sequencer) resolve(items []Item) ([]*entry, []models.UnknownIngredient, []models.Note) {
	var (
		entries     []*entry
		unknown     []models.UnknownIngredient
		notes       []models.Note
		seenEntry   = make(map[string]bool)
		seenUnknown = make(map[string]bool)
	)

	for _, it := range items {
		refs := it.Ingredients
		if len(refs) == 0 {
			refs = []string{it.Name}
		}

		byID := make(map[string]models.Ingredient)
		for _, ref := range refs {
			if strings.TrimSpace(ref) == "" {
				continue
			}
			ing, err := s.graph.Lookup(ref)
			if err != nil {
				if key := models.NormalizeKey(ref); !seenUnknown[key] {
					seenUnknown[key] = true
					unknown = append(unknown, models.UnknownIngredient{Input: ref})
				}
				continue
			}
			byID[ing.ID] = ing
		}
		if len(byID) == 0 {
			continue
		}

		e := &entry{}
		for id := range byID {
			e.ids = append(e.ids, id)
		}
		slices.Sort(e.ids)
		e.key = strings.Join(e.ids, "+")
		if seenEntry[e.key] {
			continue
		}
		seenEntry[e.key] = true

		e.name = strings.TrimSpace(it.Name)
		if len(it.Ingredients) == 0 || e.name == "" {
			names := make([]string, 0, len(e.ids))
			for _, id := range e.ids {
				names = append(names, byID[id].Name)
			}
			e.name = strings.Join(names, " + ")
		}

		e.tod = models.Both
		e.category = byID[e.ids[0]].Category
		clash := false
		for _, id := range e.ids {
			ing := byID[id]
			if combined, ok := e.tod.Combine(ing.TimeOfDay); ok {
				e.tod = combined
			} else {
				clash = true
			}
			if ing.Category.Rank() > e.category.Rank() {
				e.category = ing.Category
			}
			if ing.Category == models.CategorySunscreen {
				e.sunscreen = true
			}
		}
		if clash {
			e.tod = models.Either
			notes = append(notes, models.Note{
				Kind:        models.NoteUnplaceable,
				Ingredients: slices.Clone(e.ids),
				Message:     fmt.Sprintf("%s combines morning-only and evening-only ingredients; no slot suits all of them", e.name),
			})
		}

		entries = append(entries, e)
	}

	slices.SortFunc(entries, compareEntries)
	return entries, unknown, notes
}

// place applies the hard time-of-day filter.
func (s *Sequencer) place(entries []*entry) {
	for _, e := range entries {
		switch e.tod {
		case models.MorningOnly:
			e.am = true
		case models.EveningOnly:
			e.pm = true
		case models.Both:
			e.am, e.pm = true, true
		default:
			e.set(s.cfg.FlexibleSlot, true)
		}
	}
}

func inSlot(entries []*entry, slot models.Slot) []*entry {
	var out []*entry
	for _, e := range entries {
		if e.in(slot) {
			out = append(out, e)
		}
	}
	return out
}

func unionIDs(entries []*entry) []string {
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ids...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
