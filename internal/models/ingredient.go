package models

import "slices"

// Category is the function class of an ingredient.
type Category string

const (
	CategoryCleanser        Category = "cleanser"
	CategoryToner           Category = "toner"
	CategoryExfoliant       Category = "exfoliant"
	CategoryVitaminC        Category = "vitamin_c"
	CategoryAntioxidant     Category = "antioxidant"
	CategoryNiacinamide     Category = "niacinamide"
	CategoryHumectant       Category = "humectant"
	CategoryAzelaicAcid     Category = "azelaic_acid"
	CategoryBenzoylPeroxide Category = "benzoyl_peroxide"
	CategoryPeptide         Category = "peptide"
	CategoryTreatment       Category = "treatment"
	CategoryRetinoid        Category = "retinoid"
	CategoryOther           Category = "other"
	CategoryCeramide        Category = "ceramide"
	CategoryMoisturizer     Category = "moisturizer"
	CategoryFacialOil       Category = "facial_oil"
	CategorySunscreen       Category = "sunscreen"
)

// categoryRank is the default application order. Lower goes on first:
// cleanser, then actives from lightest to heaviest texture, then
// moisturizer and oil, sunscreen last.
var categoryRank = map[Category]int{
	CategoryCleanser:        10,
	CategoryToner:           20,
	CategoryExfoliant:       30,
	CategoryVitaminC:        40,
	CategoryAntioxidant:     42,
	CategoryNiacinamide:     44,
	CategoryHumectant:       46,
	CategoryAzelaicAcid:     50,
	CategoryBenzoylPeroxide: 52,
	CategoryPeptide:         54,
	CategoryTreatment:       56,
	CategoryRetinoid:        60,
	CategoryOther:           65,
	CategoryCeramide:        70,
	CategoryMoisturizer:     75,
	CategoryFacialOil:       80,
	CategorySunscreen:       90,
}

// Rank returns the default order rank of the category.
// Unknown categories sort with CategoryOther.
func (c Category) Rank() int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return categoryRank[CategoryOther]
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryRank[c]
	return ok
}

// Categories returns all known categories in default application order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryRank))
	for c := range categoryRank {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Category) int { return a.Rank() - b.Rank() })
	return out
}

// PHRange is the effective pH interval of an ingredient.
type PHRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Gap returns the distance between two ranges, zero when they overlap.
func (r PHRange) Gap(o PHRange) float64 {
	switch {
	case r.Max < o.Min:
		return o.Min - r.Max
	case o.Max < r.Min:
		return r.Min - o.Max
	default:
		return 0
	}
}

// Ingredient is a node in the ingredient graph.
// Slice fields are kept sorted and deduplicated by the graph.
type Ingredient struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Aliases          []string   `json:"aliases,omitempty"`
	Category         Category   `json:"category"`
	PH               *PHRange   `json:"ph,omitempty"`
	MaxConcentration *float64   `json:"max_concentration,omitempty"` // percent
	TimeOfDay        TimeOfDay  `json:"time_of_day"`
	Concerns         []Concern  `json:"concerns,omitempty"`
	CautionSkinTypes []SkinType `json:"caution_skin_types,omitempty"`
	Guidance         string     `json:"guidance,omitempty"`
	BeginnerFriendly bool       `json:"beginner_friendly"`
}

// Addresses reports whether the ingredient targets the concern.
func (i Ingredient) Addresses(c Concern) bool {
	return slices.Contains(i.Concerns, c)
}

// CautionFor reports whether the skin type needs caution with this ingredient.
func (i Ingredient) CautionFor(st SkinType) bool {
	return slices.Contains(i.CautionSkinTypes, st)
}

// Clone returns a deep copy so callers cannot mutate shared graph state.
func (i Ingredient) Clone() Ingredient {
	c := i
	c.Aliases = slices.Clone(i.Aliases)
	c.Concerns = slices.Clone(i.Concerns)
	c.CautionSkinTypes = slices.Clone(i.CautionSkinTypes)
	if i.PH != nil {
		ph := *i.PH
		c.PH = &ph
	}
	if i.MaxConcentration != nil {
		mc := *i.MaxConcentration
		c.MaxConcentration = &mc
	}
	return c
}

// UnknownIngredient reports an input that did not resolve to any ingredient.
type UnknownIngredient struct {
	Input       string   `json:"input"`
	Suggestions []string `json:"suggestions,omitempty"`
}
