package models

// RoutineStep places one item at a position within a slot.
type RoutineStep struct {
	Slot     Slot   `json:"slot"`
	Position int    `json:"position"` // 1-based
	Name     string `json:"name"`
	// Ingredients are the resolved ingredient ids applied in this step.
	Ingredients []string `json:"ingredients"`
	Category    Category `json:"category"`
}

// Routine is the ordered AM and PM step lists.
type Routine struct {
	AM []RoutineStep `json:"am"`
	PM []RoutineStep `json:"pm"`
}

// Steps returns the steps of slot s.
func (r Routine) Steps(s Slot) []RoutineStep {
	if s == SlotAM {
		return r.AM
	}
	return r.PM
}

// Len returns the total number of steps across both slots.
func (r Routine) Len() int {
	return len(r.AM) + len(r.PM)
}

// NoteKind classifies advisory notes attached to results.
type NoteKind string

const (
	NoteCaution          NoteKind = "caution"
	NoteSynergy          NoteKind = "synergy"
	NoteWait             NoteKind = "wait"
	NoteMissingEssential NoteKind = "missing_essential"
	NoteSkinTypeCaution  NoteKind = "skin_type_caution"
	NoteMoved            NoteKind = "moved"
	NoteOrderCycle       NoteKind = "order_cycle"
	NoteUnplaceable      NoteKind = "unplaceable"
	NotePHHint           NoteKind = "ph_hint"
	NoteAvoidListed      NoteKind = "avoid_listed"
	NoteCasesEmpty       NoteKind = "cases_empty"
)

// Note is advisory output. It never changes a verdict.
type Note struct {
	Kind        NoteKind `json:"kind"`
	Slot        Slot     `json:"slot,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Message     string   `json:"message"`
}
