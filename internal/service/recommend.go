package service

import (
	"fmt"
	"time"

	"github.com/raphaelgruber/mixmyroutine/internal/cbr"
	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/diagnostic"
	"github.com/raphaelgruber/mixmyroutine/internal/metrics"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// AdviceSource names where recommended ingredients came from.
type AdviceSource string

const (
	SourceCases    AdviceSource = "cases"
	SourceFallback AdviceSource = "fallback"
)

// Suggested is one recommended ingredient.
type Suggested struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category models.Category `json:"category"`
	// Weight is the case evidence share for case advice and the rank
	// position score for fallback advice, both in [0,1].
	Weight float64 `json:"weight"`
	Reason string  `json:"reason"`
}

// Advice is a profile recommendation. Categories is the fallback's ranked
// category list; it is filled even when cases matched, as a cross-check.
type Advice struct {
	Version     uint64                      `json:"snapshot_version"`
	Source      AdviceSource                `json:"source"`
	Cases       cbr.Recommendation          `json:"cases"`
	Categories  []diagnostic.RankedCategory `json:"categories"`
	Ingredients []Suggested                 `json:"ingredients"`
	Removed     []conflict.Removal          `json:"removed,omitempty"`
	Notes       []models.Note               `json:"notes,omitempty"`
	// Report re-checks the final set; it never holds a conflict.
	Report conflict.Report `json:"report"`
}

// IDs returns the recommended ingredient ids in ranked order.
func (ad Advice) IDs() []string {
	out := make([]string, len(ad.Ingredients))
	for i, s := range ad.Ingredients {
		out[i] = s.ID
	}
	return out
}

// Recommend suggests ingredients for the profile from similar cases, or
// from the concern table when no case is similar enough or the similar
// cases leave nothing to recommend.
func (a *Advisor) Recommend(profile models.SkinProfile) (Advice, error) {
	start := time.Now()
	if err := ValidateProfile(profile); err != nil {
		return Advice{}, err
	}
	snap := a.holder.Current()
	profile = resolveProfile(snap, profile)

	rec := snap.Engine.Recommend(profile)
	advice := Advice{
		Version:     snap.Version,
		Cases:       rec,
		Categories:  rankCategories(snap.Fallback, profile.Concerns),
		Ingredients: []Suggested{},
	}

	if rec.Status == cbr.StatusMatched && len(rec.Ingredients) > 0 {
		advice.Source = SourceCases
		for _, wi := range rec.Ingredients {
			ing, _ := snap.Graph.Get(wi.ID)
			advice.Ingredients = append(advice.Ingredients, Suggested{
				ID:       wi.ID,
				Name:     wi.Name,
				Category: ing.Category,
				Weight:   wi.Weight,
				Reason:   fmt.Sprintf("used in %d similar case(s)", len(wi.Support)),
			})
		}
		advice.Removed = rec.Removed
		advice.Notes = rec.Notes
	} else {
		advice.Source = SourceFallback
		if rec.Status == cbr.StatusMatched {
			a.logger.Info("similar cases left no ingredients, using diagnostic fallback",
				"best_score", rec.BestScore,
				"excluded", len(rec.Excluded),
				"removed", len(rec.Removed),
			)
			advice.Notes = append(advice.Notes, models.Note{
				Kind:    models.NoteCasesEmpty,
				Message: fmt.Sprintf("%d similar case(s) matched but left no usable ingredients", len(rec.Matches)),
			})
		} else {
			a.logger.Info("no similar case, using diagnostic fallback",
				"best_score", rec.BestScore,
				"skin_type", profile.SkinType,
				"concerns", len(profile.Concerns),
			)
		}
		fallbackStart := time.Now()
		advice.Ingredients, advice.Removed = fromCategories(snap.Detector, advice.Categories, profile)
		a.metrics.RecordTiming(metrics.OpFallback, time.Since(fallbackStart))
	}

	advice.Report = snap.Detector.Classify(advice.IDs())
	a.metrics.RecordRequest(metrics.OpRecommend, time.Since(start), len(advice.Ingredients))
	return advice, nil
}

// Fallback ranks ingredient categories for the concerns directly.
func (a *Advisor) Fallback(concerns []models.Concern) ([]diagnostic.RankedCategory, error) {
	for _, c := range concerns {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown concern %q", ErrInvalidProfile, c)
		}
	}
	start := time.Now()
	ranked := rankCategories(a.holder.Current().Fallback, concerns)
	a.metrics.RecordTiming(metrics.OpFallback, time.Since(start))
	return ranked, nil
}

// rankCategories falls back to the basic categories when there are no
// concerns to rank by.
func rankCategories(f *diagnostic.Fallback, concerns []models.Concern) []diagnostic.RankedCategory {
	ranked := f.RecommendFor(concerns)
	if len(ranked) > 0 {
		return ranked
	}
	out := make([]diagnostic.RankedCategory, len(diagnostic.Basics))
	for i, c := range diagnostic.Basics {
		out[i] = diagnostic.RankedCategory{Category: c}
	}
	return out
}

// fromCategories picks one ingredient per ranked category and prunes
// conflicts, keeping the higher-ranked member of each conflicting pair.
func fromCategories(d *conflict.Detector, ranked []diagnostic.RankedCategory, profile models.SkinProfile) ([]Suggested, []conflict.Removal) {
	picks := diagnostic.SelectIngredients(d.Graph(), ranked, profile, 1)
	if len(picks) == 0 {
		return []Suggested{}, nil
	}

	score := make(map[string]float64, len(picks))
	ids := make([]string, len(picks))
	for i, p := range picks {
		ids[i] = p.ID
		score[p.ID] = 1 - float64(i)/float64(len(picks))
	}
	kept, removed := d.Prune(ids, func(id string) float64 { return score[id] })

	byID := make(map[string]diagnostic.Pick, len(picks))
	for _, p := range picks {
		byID[p.ID] = p
	}
	out := make([]Suggested, 0, len(kept))
	for _, id := range kept {
		p := byID[id]
		reason := fmt.Sprintf("%s category", p.Category)
		if len(p.Concerns) > 0 {
			reason = fmt.Sprintf("%s category, addresses %v", p.Category, p.Concerns)
		}
		out = append(out, Suggested{
			ID:       id,
			Name:     p.Name,
			Category: p.Category,
			Weight:   score[id],
			Reason:   reason,
		})
	}
	return out, removed
}
