package models

import "fmt"

// Slot is a time-of-day routine slot.
type Slot string

const (
	SlotAM Slot = "am"
	SlotPM Slot = "pm"
)

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	if s == SlotAM {
		return SlotPM
	}
	return SlotAM
}

// ParseSlot parses "am"/"pm" (also "morning"/"evening").
func ParseSlot(s string) (Slot, error) {
	switch NormalizeKey(s) {
	case "am", "morning":
		return SlotAM, nil
	case "pm", "evening", "night":
		return SlotPM, nil
	default:
		return "", fmt.Errorf("unknown slot %q", s)
	}
}

// TimeOfDay restricts which slots an ingredient may be used in.
type TimeOfDay string

const (
	MorningOnly TimeOfDay = "morning_only"
	EveningOnly TimeOfDay = "evening_only"
	// Either means one slot, chosen by the sequencer.
	Either TimeOfDay = "either"
	// Both means the ingredient is used in both slots.
	Both TimeOfDay = "both"
)

// Valid reports whether t is a known time-of-day value.
func (t TimeOfDay) Valid() bool {
	switch t {
	case MorningOnly, EveningOnly, Either, Both:
		return true
	}
	return false
}

// Allows reports whether the ingredient may be placed in slot s.
func (t TimeOfDay) Allows(s Slot) bool {
	switch t {
	case MorningOnly:
		return s == SlotAM
	case EveningOnly:
		return s == SlotPM
	case Either, Both:
		return true
	}
	return false
}

// Combine returns the most restrictive value satisfying both t and o, and
// false when no slot satisfies both (morning_only with evening_only).
func (t TimeOfDay) Combine(o TimeOfDay) (TimeOfDay, bool) {
	if t == o {
		return t, true
	}
	if t == Both {
		return o, true
	}
	if o == Both {
		return t, true
	}
	if t == Either {
		return o, true
	}
	if o == Either {
		return t, true
	}
	return "", false
}
