package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/knowledge"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// maxSuggestionDistance is the largest edit distance offered as a suggestion.
const maxSuggestionDistance = 3

// UnknownIngredientError is a lookup miss with "did you mean" suggestions.
// It matches graph.ErrUnknownIngredient with errors.Is.
type UnknownIngredientError struct {
	Input       string
	Suggestions []string
}

func (e *UnknownIngredientError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown ingredient %q", e.Input)
	}
	return fmt.Sprintf("unknown ingredient %q (did you mean %s?)", e.Input, strings.Join(e.Suggestions, ", "))
}

func (e *UnknownIngredientError) Unwrap() error { return graph.ErrUnknownIngredient }

// IngredientInfo is an ingredient with every stored interaction it takes
// part in.
type IngredientInfo struct {
	Ingredient   models.Ingredient        `json:"ingredient"`
	Interactions []models.InteractionEdge `json:"interactions"`
}

// Lookup resolves a name or alias.
func (a *Advisor) Lookup(name string) (IngredientInfo, error) {
	snap := a.holder.Current()
	ing, err := snap.Graph.Lookup(name)
	if err != nil {
		return IngredientInfo{}, &UnknownIngredientError{
			Input:       name,
			Suggestions: suggest(snap.Graph, name, a.suggestions),
		}
	}
	return IngredientInfo{Ingredient: ing, Interactions: snap.Graph.EdgesFor(ing.ID)}, nil
}

// Ingredients lists ingredients, optionally filtered by concern and category.
func (a *Advisor) Ingredients(concern models.Concern, category models.Category) []models.Ingredient {
	g := a.holder.Current().Graph
	var list []models.Ingredient
	switch {
	case concern != "":
		list = g.ByConcern(concern)
	case category != "":
		list = g.ByCategory(category)
	default:
		list = g.Ingredients()
	}
	if concern != "" && category != "" {
		list = slices.DeleteFunc(list, func(i models.Ingredient) bool { return i.Category != category })
	}
	return list
}

func (a *Advisor) withSuggestions(snap *knowledge.Snapshot, unknown []models.UnknownIngredient) []models.UnknownIngredient {
	for i := range unknown {
		unknown[i].Suggestions = suggest(snap.Graph, unknown[i].Input, a.suggestions)
	}
	return unknown
}

// suggest offers ingredient names close to input: names and aliases that
// contain it first, then those within a small edit distance.
func suggest(g *graph.Graph, input string, limit int) []string {
	key := models.NormalizeKey(input)
	if key == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		id       string
		contains bool
		distance int
	}
	best := make(map[string]candidate)
	for _, t := range g.Terms() {
		c := candidate{id: t.ID}
		if strings.Contains(t.Key, key) {
			c.contains = true
			c.distance = len(t.Key) - len(key)
		} else {
			c.distance = levenshtein.ComputeDistance(key, t.Key)
			if c.distance > maxSuggestionDistance {
				continue
			}
		}
		if prev, ok := best[t.ID]; ok && !better(c.contains, c.distance, prev.contains, prev.distance) {
			continue
		}
		best[t.ID] = c
	}

	ranked := make([]candidate, 0, len(best))
	for _, c := range best {
		ranked = append(ranked, c)
	}
	slices.SortFunc(ranked, func(x, y candidate) int {
		if x.contains != y.contains {
			if x.contains {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(x.distance, y.distance), strings.Compare(x.id, y.id))
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, c := range ranked[:min(limit, len(ranked))] {
		ing, _ := g.Get(c.id)
		out = append(out, ing.Name)
	}
	return out
}

func better(contains bool, distance int, prevContains bool, prevDistance int) bool {
	if contains != prevContains {
		return contains
	}
	return distance < prevDistance
}
