package models

import "slices"

// SkinType is the user's base skin type.
type SkinType string

const (
	SkinDry         SkinType = "dry"
	SkinOily        SkinType = "oily"
	SkinCombination SkinType = "combination"
	SkinSensitive   SkinType = "sensitive"
	SkinNormal      SkinType = "normal"
)

// SkinTypes lists every known skin type.
var SkinTypes = []SkinType{SkinDry, SkinOily, SkinCombination, SkinSensitive, SkinNormal}

// Valid reports whether st is a known skin type.
func (st SkinType) Valid() bool {
	return slices.Contains(SkinTypes, st)
}

// Concern is a skin concern an ingredient may address.
type Concern string

const (
	ConcernAcne              Concern = "acne"
	ConcernAging             Concern = "aging"
	ConcernHyperpigmentation Concern = "hyperpigmentation"
	ConcernDryness           Concern = "dryness"
	ConcernDehydration       Concern = "dehydration"
	ConcernOiliness          Concern = "oiliness"
	ConcernSensitivity       Concern = "sensitivity"
	ConcernDullness          Concern = "dullness"
	ConcernTexture           Concern = "texture"
	ConcernRedness           Concern = "redness"
	ConcernDarkCircles       Concern = "dark_circles"
	ConcernPores             Concern = "pores"
)

// Concerns lists every known concern.
var Concerns = []Concern{
	ConcernAcne, ConcernAging, ConcernHyperpigmentation, ConcernDryness,
	ConcernDehydration, ConcernOiliness, ConcernSensitivity, ConcernDullness,
	ConcernTexture, ConcernRedness, ConcernDarkCircles, ConcernPores,
}

// Valid reports whether c is a known concern.
func (c Concern) Valid() bool {
	return slices.Contains(Concerns, c)
}

// Sensitivity bounds. Higher means more reactive skin.
const (
	MinSensitivity = 1
	MaxSensitivity = 5
)

// SkinProfile describes a user for recommendation and caution checks.
type SkinProfile struct {
	SkinType    SkinType  `json:"skin_type" yaml:"skin_type"`
	Concerns    []Concern `json:"concerns" yaml:"concerns"`
	Sensitivity int       `json:"sensitivity" yaml:"sensitivity"`
	// Current holds ingredient ids already in use.
	Current []string `json:"current,omitempty" yaml:"current,omitempty"`
	// Avoid holds ingredient ids the user reacts to.
	Avoid []string `json:"avoid,omitempty" yaml:"avoid,omitempty"`
}

// HasConcern reports whether the profile lists c.
func (p SkinProfile) HasConcern(c Concern) bool {
	return slices.Contains(p.Concerns, c)
}

// Avoids reports whether the profile excludes the ingredient id.
func (p SkinProfile) Avoids(id string) bool {
	return slices.Contains(p.Avoid, id)
}

// Outcome labels how well a stored routine worked for its profile.
type Outcome string

const (
	OutcomeSuccessful Outcome = "successful"
	OutcomeNeutral    Outcome = "neutral"
	OutcomePoor       Outcome = "poor"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccessful, OutcomeNeutral, OutcomePoor:
		return true
	}
	return false
}

// Case is a stored profile, the ingredient set it used, and how it went.
// Cases are never modified after they enter a case base.
type Case struct {
	ID          string      `json:"id"`
	Profile     SkinProfile `json:"profile"`
	Ingredients []string    `json:"ingredients"`
	Outcome     Outcome     `json:"outcome"`
	Note        string      `json:"note,omitempty"`
}
