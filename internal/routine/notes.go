package routine

import (
	"fmt"
	"slices"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// annotate attaches advisory notes for one ordered slot. Notes never
// change placement or order.
func (s *Sequencer) annotate(ordered []*entry, slot models.Slot) []models.Note {
	var notes []models.Note
	if len(ordered) == 0 {
		return notes
	}

	report := s.detector.Classify(unionIDs(ordered))
	for _, f := range report.Cautions {
		notes = append(notes, findingNote(models.NoteCaution, slot, f))
	}
	for _, f := range report.Synergies {
		notes = append(notes, findingNote(models.NoteSynergy, slot, f))
	}

	all := slices.Concat(report.Conflicts, report.Cautions, report.Synergies)
	for _, f := range all {
		if f.WaitMinutes <= 0 || !acrossSteps(ordered, f) {
			continue
		}
		notes = append(notes, models.Note{
			Kind:        models.NoteWait,
			Slot:        slot,
			Ingredients: []string{f.A, f.B},
			Message:     fmt.Sprintf("wait about %d minutes between %s and %s", f.WaitMinutes, f.NameA, f.NameB),
		})
	}

	for _, h := range report.Hints {
		notes = append(notes, models.Note{
			Kind:        models.NotePHHint,
			Slot:        slot,
			Ingredients: []string{h.A, h.B},
			Message:     h.Message,
		})
	}

	if slot == models.SlotAM && !slices.ContainsFunc(ordered, func(e *entry) bool { return e.sunscreen }) {
		notes = append(notes, models.Note{
			Kind:    models.NoteMissingEssential,
			Slot:    models.SlotAM,
			Message: "morning routine has no sunscreen; finish with SPF 30 or higher",
		})
	}

	return notes
}

func findingNote(kind models.NoteKind, slot models.Slot, f conflict.Finding) models.Note {
	msg := fmt.Sprintf("%s + %s: %s", f.NameA, f.NameB, f.Explanation)
	if f.Recommendation != "" {
		msg += " (" + f.Recommendation + ")"
	}
	return models.Note{Kind: kind, Slot: slot, Ingredients: []string{f.A, f.B}, Message: msg}
}

// acrossSteps reports whether the finding's two ingredients are applied in
// different steps, i.e. a wait between them is possible.
func acrossSteps(ordered []*entry, f conflict.Finding) bool {
	for _, e := range ordered {
		if e.has(f.A) && e.has(f.B) {
			return false
		}
	}
	return true
}

// profileNotes flags skin-type cautions and avoid-listed ingredients.
func (s *Sequencer) profileNotes(entries []*entry, profile *models.SkinProfile) []models.Note {
	if profile == nil {
		return nil
	}

	var notes []models.Note
	for _, id := range unionIDs(entries) {
		ing, ok := s.graph.Get(id)
		if !ok {
			continue
		}
		if profile.Avoids(id) {
			notes = append(notes, models.Note{
				Kind:        models.NoteAvoidListed,
				Ingredients: []string{id},
				Message:     fmt.Sprintf("%s is on your avoid list", ing.Name),
			})
		}
		if profile.SkinType != "" && ing.CautionFor(profile.SkinType) {
			msg := fmt.Sprintf("%s needs caution for %s skin", ing.Name, profile.SkinType)
			if ing.Guidance != "" {
				msg += ": " + ing.Guidance
			}
			notes = append(notes, models.Note{
				Kind:        models.NoteSkinTypeCaution,
				Ingredients: []string{id},
				Message:     msg,
			})
		}
	}
	return notes
}
