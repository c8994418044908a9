package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeOfDayAllows(t *testing.T) {
	tests := []struct {
		tod    TimeOfDay
		am, pm bool
	}{
		{MorningOnly, true, false},
		{EveningOnly, false, true},
		{Either, true, true},
		{Both, true, true},
		{TimeOfDay("noon"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tod), func(t *testing.T) {
			assert.Equal(t, tt.am, tt.tod.Allows(SlotAM))
			assert.Equal(t, tt.pm, tt.tod.Allows(SlotPM))
		})
	}
}

func TestTimeOfDayCombine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   TimeOfDay
		want   TimeOfDay
		wantOK bool
	}{
		{"same", Either, Either, Either, true},
		{"both narrows to either", Both, Either, Either, true},
		{"both narrows to morning", MorningOnly, Both, MorningOnly, true},
		{"either narrows to evening", Either, EveningOnly, EveningOnly, true},
		{"morning and evening clash", MorningOnly, EveningOnly, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Combine(tt.b)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)

			rev, revOK := tt.b.Combine(tt.a)
			assert.Equal(t, ok, revOK)
			assert.Equal(t, got, rev)
		})
	}
}

func TestParseSlot(t *testing.T) {
	s, err := ParseSlot("Morning")
	assert.NoError(t, err)
	assert.Equal(t, SlotAM, s)

	s, err = ParseSlot("PM")
	assert.NoError(t, err)
	assert.Equal(t, SlotPM, s)
	assert.Equal(t, SlotAM, s.Other())

	_, err = ParseSlot("noon")
	assert.Error(t, err)
}
