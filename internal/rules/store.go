// Package rules is the interaction rule store: the validated ingredient and
// interaction records the ingredient graph is built from.
package rules

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// Source supplies ingredient and interaction records, e.g. from files.
type Source interface {
	LoadRules(ctx context.Context) ([]models.Ingredient, []models.InteractionEdge, error)
}

// Stats summarizes the records in a store.
type Stats struct {
	Ingredients int `json:"ingredients"`
	Conflicts   int `json:"conflicts"`
	Cautions    int `json:"cautions"`
	Synergies   int `json:"synergies"`
}

// Store holds normalized rule records. It never changes after NewStore.
type Store struct {
	ingredients []models.Ingredient
	edges       []models.InteractionEdge
}

// NewStore normalizes the records: trimmed text, canonical pair order and
// a deterministic record order. Referential checks happen in Graph.
func NewStore(ingredients []models.Ingredient, edges []models.InteractionEdge) *Store {
	s := &Store{
		ingredients: make([]models.Ingredient, 0, len(ingredients)),
		edges:       make([]models.InteractionEdge, 0, len(edges)),
	}
	for _, ing := range ingredients {
		ing = ing.Clone()
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Guidance = strings.TrimSpace(ing.Guidance)
		s.ingredients = append(s.ingredients, ing)
	}
	for _, e := range edges {
		e = e.Normalized()
		e.Explanation = strings.TrimSpace(e.Explanation)
		e.Recommendation = strings.TrimSpace(e.Recommendation)
		s.edges = append(s.edges, e)
	}

	slices.SortStableFunc(s.ingredients, func(a, b models.Ingredient) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(s.edges, func(a, b models.InteractionEdge) int {
		return cmp.Or(
			strings.Compare(a.A, b.A),
			strings.Compare(a.B, b.B),
			b.Kind.Strength()-a.Kind.Strength(),
		)
	})
	return s
}

// Load reads records from src and wraps them in a store.
func Load(ctx context.Context, src Source) (*Store, error) {
	ingredients, edges, err := src.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return NewStore(ingredients, edges), nil
}

// Graph builds the ingredient graph. Bad records fail with
// graph.ErrInvalidRuleData and no graph.
func (s *Store) Graph() (*graph.Graph, error) {
	g, err := graph.New(s.ingredients, s.edges)
	if err != nil {
		return nil, fmt.Errorf("build ingredient graph: %w", err)
	}
	return g, nil
}

// Ingredients returns copies of the ingredient records.
func (s *Store) Ingredients() []models.Ingredient {
	out := make([]models.Ingredient, len(s.ingredients))
	for i, ing := range s.ingredients {
		out[i] = ing.Clone()
	}
	return out
}

// Interactions returns the interaction records.
func (s *Store) Interactions() []models.InteractionEdge {
	return slices.Clone(s.edges)
}

// ByKind returns the interaction records of one kind.
func (s *Store) ByKind(kind models.RelationKind) []models.InteractionEdge {
	var out []models.InteractionEdge
	for _, e := range s.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Stats counts records by kind.
func (s *Store) Stats() Stats {
	st := Stats{Ingredients: len(s.ingredients)}
	for _, e := range s.edges {
		switch e.Kind {
		case models.KindConflict:
			st.Conflicts++
		case models.KindCaution:
			st.Cautions++
		case models.KindSynergy:
			st.Synergies++
		}
	}
	return st
}
