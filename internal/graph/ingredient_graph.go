// Package graph holds the immutable ingredient semantic network: ingredient
// nodes keyed by id and typed, explained interaction edges between pairs.
package graph

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

type pair struct{ a, b string }

func pairOf(x, y string) pair {
	a, b := models.PairKey(x, y)
	return pair{a, b}
}

// Term is a lookup key (normalized id, name or alias) and the ingredient it resolves to.
type Term struct {
	Key string
	ID  string
}

// Graph is the ingredient semantic network. It is read-only after New
// returns and safe for concurrent use.
type Graph struct {
	ids         []string
	ingredients map[string]models.Ingredient
	keys        map[string]string
	terms       []Term
	byPair      map[pair][]models.InteractionEdge
	adjacency   map[string][]models.InteractionEdge
	edgeCount   int
}

// New validates the records and builds the graph. Every violation found is
// reported, joined under ErrInvalidRuleData; no graph is returned on error.
func New(ingredients []models.Ingredient, edges []models.InteractionEdge) (*Graph, error) {
	g := &Graph{
		ingredients: make(map[string]models.Ingredient, len(ingredients)),
		keys:        make(map[string]string, len(ingredients)*3),
		byPair:      make(map[pair][]models.InteractionEdge, len(edges)),
		adjacency:   make(map[string][]models.InteractionEdge, len(ingredients)),
	}

	var problems []error
	for _, ing := range ingredients {
		if err := g.addIngredient(ing); err != nil {
			problems = append(problems, err)
		}
	}
	for _, e := range edges {
		if err := g.addEdge(e); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRuleData, errors.Join(problems...))
	}

	for id := range g.ingredients {
		g.ids = append(g.ids, id)
	}
	slices.Sort(g.ids)
	for key, id := range g.keys {
		g.terms = append(g.terms, Term{Key: key, ID: id})
	}
	slices.SortFunc(g.terms, func(a, b Term) int { return strings.Compare(a.Key, b.Key) })
	for id, list := range g.adjacency {
		slices.SortFunc(list, compareEdges)
		g.adjacency[id] = list
	}
	for p, list := range g.byPair {
		slices.SortFunc(list, compareEdges)
		g.byPair[p] = list
	}

	return g, nil
}

func (g *Graph) addIngredient(ing models.Ingredient) error {
	id := strings.TrimSpace(ing.ID)
	if id == "" {
		return fmt.Errorf("ingredient %q has empty id", ing.Name)
	}
	if id != ing.ID {
		return fmt.Errorf("ingredient id %q has surrounding whitespace", ing.ID)
	}
	if _, dup := g.ingredients[id]; dup {
		return fmt.Errorf("duplicate ingredient id %q", id)
	}

	ing = ing.Clone()
	ing.Aliases = dedupe(ing.Aliases)
	ing.Concerns = dedupe(ing.Concerns)
	ing.CautionSkinTypes = dedupe(ing.CautionSkinTypes)

	names := append([]string{id, ing.Name}, ing.Aliases...)
	var problems []error
	for _, n := range names {
		key := models.NormalizeKey(n)
		if key == "" {
			continue
		}
		if owner, taken := g.keys[key]; taken && owner != id {
			problems = append(problems, fmt.Errorf("alias %q of %q collides with ingredient %q", n, id, owner))
			continue
		}
		g.keys[key] = id
	}
	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	g.ingredients[id] = ing
	return nil
}

func (g *Graph) addEdge(e models.InteractionEdge) error {
	e = e.Normalized()
	label := fmt.Sprintf("%s edge %s/%s", e.Kind, e.A, e.B)

	if !e.Kind.Valid() {
		return fmt.Errorf("%s: unknown relation kind", label)
	}
	if e.A == e.B {
		return fmt.Errorf("%s: ingredient paired with itself", label)
	}
	for _, id := range []string{e.A, e.B} {
		if _, ok := g.ingredients[id]; !ok {
			return fmt.Errorf("%s: references unknown ingredient %q", label, id)
		}
	}
	if strings.TrimSpace(e.Explanation) == "" {
		return fmt.Errorf("%s: missing explanation", label)
	}
	if e.Severity < models.MinSeverity || e.Severity > models.MaxSeverity {
		return fmt.Errorf("%s: severity %d outside %d-%d", label, e.Severity, models.MinSeverity, models.MaxSeverity)
	}
	if e.ApplyFirst != "" && !e.Involves(e.ApplyFirst) {
		return fmt.Errorf("%s: apply_first %q is not part of the pair", label, e.ApplyFirst)
	}

	p := pair{e.A, e.B}
	for _, existing := range g.byPair[p] {
		if existing.Kind == e.Kind {
			return fmt.Errorf("%s: duplicate (pair, kind) entry", label)
		}
	}

	g.byPair[p] = append(g.byPair[p], e)
	g.adjacency[e.A] = append(g.adjacency[e.A], e)
	g.adjacency[e.B] = append(g.adjacency[e.B], e)
	g.edgeCount++
	return nil
}

// Lookup resolves a display name, id or alias, ignoring case and
// separators. A miss returns ErrUnknownIngredient; suggestions are the
// caller's concern.
func (g *Graph) Lookup(nameOrAlias string) (models.Ingredient, error) {
	id, ok := g.keys[models.NormalizeKey(nameOrAlias)]
	if !ok {
		return models.Ingredient{}, fmt.Errorf("%w: %q", ErrUnknownIngredient, nameOrAlias)
	}
	return g.ingredients[id].Clone(), nil
}

// Get returns the ingredient with the exact id.
func (g *Graph) Get(id string) (models.Ingredient, bool) {
	ing, ok := g.ingredients[id]
	if !ok {
		return models.Ingredient{}, false
	}
	return ing.Clone(), true
}

// Has reports whether id is a known ingredient id.
func (g *Graph) Has(id string) bool {
	_, ok := g.ingredients[id]
	return ok
}

// Edges returns every edge stored for the unordered pair (a, b),
// strongest kind first.
func (g *Graph) Edges(a, b string) []models.InteractionEdge {
	return slices.Clone(g.byPair[pairOf(a, b)])
}

// EdgesBetween returns the edges whose two ends are both in ids, ordered
// by pair then by kind strength. Pairs with no stored edge are absent:
// that is not a claim the pair is safe.
func (g *Graph) EdgesBetween(ids []string) []models.InteractionEdge {
	set := dedupe(ids)
	var out []models.InteractionEdge
	for i := 0; i < len(set); i++ {
		for j := i + 1; j < len(set); j++ {
			out = append(out, g.byPair[pair{set[i], set[j]}]...)
		}
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// EdgesFor returns every edge touching id.
func (g *Graph) EdgesFor(id string) []models.InteractionEdge {
	return slices.Clone(g.adjacency[id])
}

// Neighbors returns the sorted ids linked to id by an edge of the given kind.
func (g *Graph) Neighbors(id string, kind models.RelationKind) []string {
	var out []string
	for _, e := range g.adjacency[id] {
		if e.Kind == kind {
			out = append(out, e.Other(id))
		}
	}
	slices.Sort(out)
	return out
}

// Ingredients returns every ingredient sorted by id.
func (g *Graph) Ingredients() []models.Ingredient {
	return g.filter(func(models.Ingredient) bool { return true })
}

// ByConcern returns the ingredients addressing c, sorted by id.
func (g *Graph) ByConcern(c models.Concern) []models.Ingredient {
	return g.filter(func(i models.Ingredient) bool { return i.Addresses(c) })
}

// ByCategory returns the ingredients of category c, sorted by id.
func (g *Graph) ByCategory(c models.Category) []models.Ingredient {
	return g.filter(func(i models.Ingredient) bool { return i.Category == c })
}

func (g *Graph) filter(keep func(models.Ingredient) bool) []models.Ingredient {
	var out []models.Ingredient
	for _, id := range g.ids {
		if ing := g.ingredients[id]; keep(ing) {
			out = append(out, ing.Clone())
		}
	}
	return out
}

// Terms returns every lookup key with its ingredient id, sorted by key.
func (g *Graph) Terms() []Term {
	return slices.Clone(g.terms)
}

// Len returns the number of ingredients.
func (g *Graph) Len() int { return len(g.ids) }

// EdgeCount returns the number of stored edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

func compareEdges(x, y models.InteractionEdge) int {
	return cmp.Or(
		strings.Compare(x.A, y.A),
		strings.Compare(x.B, y.B),
		y.Kind.Strength()-x.Kind.Strength(),
	)
}

func dedupe[T cmp.Ordered](in []T) []T {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
