// Package diagnostic maps skin concerns directly to the ingredient
// categories known to address them. It is used when no stored case is
// similar enough to reason by analogy.
package diagnostic

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// ErrInvalidTable indicates a malformed concern table.
var ErrInvalidTable = errors.New("invalid concern table")

// Table maps each concern to categories, best first.
type Table map[models.Concern][]models.Category

// Basics are recommended for concerns the table does not cover.
var Basics = []models.Category{models.CategoryCleanser, models.CategoryMoisturizer, models.CategorySunscreen}

// DefaultTable returns the built-in concern table.
func DefaultTable() Table {
	return Table{
		models.ConcernAcne:              {models.CategoryExfoliant, models.CategoryBenzoylPeroxide, models.CategoryNiacinamide, models.CategoryAzelaicAcid, models.CategoryRetinoid},
		models.ConcernAging:             {models.CategoryRetinoid, models.CategoryPeptide, models.CategoryVitaminC, models.CategoryAntioxidant, models.CategorySunscreen},
		models.ConcernHyperpigmentation: {models.CategoryVitaminC, models.CategoryAzelaicAcid, models.CategoryNiacinamide, models.CategoryExfoliant, models.CategorySunscreen},
		models.ConcernDryness:           {models.CategoryHumectant, models.CategoryCeramide, models.CategoryMoisturizer, models.CategoryFacialOil},
		models.ConcernDehydration:       {models.CategoryHumectant, models.CategoryMoisturizer, models.CategoryCeramide},
		models.ConcernOiliness:          {models.CategoryNiacinamide, models.CategoryExfoliant, models.CategoryToner},
		models.ConcernSensitivity:       {models.CategoryCeramide, models.CategoryTreatment, models.CategoryMoisturizer},
		models.ConcernDullness:          {models.CategoryVitaminC, models.CategoryExfoliant, models.CategoryAntioxidant},
		models.ConcernTexture:           {models.CategoryExfoliant, models.CategoryRetinoid},
		models.ConcernRedness:           {models.CategoryAzelaicAcid, models.CategoryNiacinamide, models.CategoryTreatment, models.CategoryCeramide},
		models.ConcernDarkCircles:       {models.CategoryPeptide, models.CategoryVitaminC, models.CategoryHumectant},
		models.ConcernPores:             {models.CategoryNiacinamide, models.CategoryExfoliant, models.CategoryRetinoid},
	}
}

// Validate checks every concern and category is known and that no list
// repeats a category.
func (t Table) Validate() error {
	var problems []error
	for concern, cats := range t {
		if !concern.Valid() {
			problems = append(problems, fmt.Errorf("unknown concern %q", concern))
		}
		if len(cats) == 0 {
			problems = append(problems, fmt.Errorf("concern %q has no categories", concern))
		}
		seen := make(map[models.Category]bool)
		for _, c := range cats {
			if !c.Valid() {
				problems = append(problems, fmt.Errorf("concern %q: unknown category %q", concern, c))
			}
			if seen[c] {
				problems = append(problems, fmt.Errorf("concern %q: category %q listed twice", concern, c))
			}
			seen[c] = true
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(problems...))
	}
	return nil
}

// RankedCategory is a recommended category with the concerns it covers.
type RankedCategory struct {
	Category models.Category  `json:"category"`
	Coverage int              `json:"coverage"`
	Concerns []models.Concern `json:"concerns"`
}

// Fallback ranks categories for a concern set. Safe for concurrent use.
type Fallback struct {
	table Table
}

// New creates a fallback over a validated copy of t.
func New(t Table) (*Fallback, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cp := make(Table, len(t))
	for k, v := range t {
		cp[k] = slices.Clone(v)
	}
	return &Fallback{table: cp}, nil
}

// Table returns a copy of the concern table.
func (f *Fallback) Table() Table {
	cp := make(Table, len(f.table))
	for k, v := range f.table {
		cp[k] = slices.Clone(v)
	}
	return cp
}

// RecommendFor ranks categories by how many of the concerns they cover.
// Ties go to the better summed position across the concern lists, then to
// the default application order. Concerns missing from the table count
// toward the basic categories, so any non-empty input gets a non-empty list.
func (f *Fallback) RecommendFor(concerns []models.Concern) []RankedCategory {
	type score struct {
		concerns []models.Concern
		position int
	}
	scores := make(map[models.Category]*score)
	add := func(cat models.Category, concern models.Concern, pos int) {
		s, ok := scores[cat]
		if !ok {
			s = &score{}
			scores[cat] = s
		}
		if !slices.Contains(s.concerns, concern) {
			s.concerns = append(s.concerns, concern)
			s.position += pos
		}
	}

	for _, concern := range dedupe(concerns) {
		cats, ok := f.table[concern]
		if !ok {
			cats = Basics
		}
		for pos, cat := range cats {
			add(cat, concern, pos)
		}
	}

	out := make([]RankedCategory, 0, len(scores))
	for cat, s := range scores {
		slices.Sort(s.concerns)
		out = append(out, RankedCategory{Category: cat, Coverage: len(s.concerns), Concerns: s.concerns})
	}
	slices.SortFunc(out, func(a, b RankedCategory) int {
		return cmp.Or(
			b.Coverage-a.Coverage,
			scores[a.Category].position-scores[b.Category].position,
			a.Category.Rank()-b.Category.Rank(),
			strings.Compare(string(a.Category), string(b.Category)),
		)
	})
	return out
}

// Pick is an ingredient chosen for a category recommendation.
type Pick struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category models.Category  `json:"category"`
	Concerns []models.Concern `json:"concerns"`
}

// SelectIngredients turns ranked categories into concrete ingredients from
// g that address at least one of the profile's concerns. Avoid-listed
// ingredients and ingredients cautioned for the profile's skin type are
// skipped. At most perCategory picks per category, by concern coverage
// then beginner friendliness then id.
func SelectIngredients(g *graph.Graph, ranked []RankedCategory, profile models.SkinProfile, perCategory int) []Pick {
	if perCategory <= 0 {
		perCategory = 1
	}

	var out []Pick
	taken := make(map[string]bool)
	for _, rc := range ranked {
		var candidates []Pick
		for _, ing := range g.ByCategory(rc.Category) {
			if taken[ing.ID] || profile.Avoids(ing.ID) || ing.CautionFor(profile.SkinType) {
				continue
			}
			var covered []models.Concern
			for _, c := range profile.Concerns {
				if ing.Addresses(c) {
					covered = append(covered, c)
				}
			}
			if len(covered) == 0 && len(profile.Concerns) > 0 && !slices.Contains(Basics, rc.Category) {
				continue
			}
			candidates = append(candidates, Pick{ID: ing.ID, Name: ing.Name, Category: ing.Category, Concerns: dedupe(covered)})
		}

		slices.SortFunc(candidates, func(a, b Pick) int {
			ia, _ := g.Get(a.ID)
			ib, _ := g.Get(b.ID)
			return cmp.Or(
				len(b.Concerns)-len(a.Concerns),
				boolRank(ib.BeginnerFriendly)-boolRank(ia.BeginnerFriendly),
				strings.Compare(a.ID, b.ID),
			)
		})
		for _, p := range candidates[:min(perCategory, len(candidates))] {
			taken[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dedupe(in []models.Concern) []models.Concern {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
