package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// CurateCase adds a solved case to the live case base. Ingredients may be
// given by name or alias; the stored case holds ids. An empty id gets a
// time-ordered one.
func (a *Advisor) CurateCase(c models.Case) (models.Case, error) {
	if err := ValidateProfile(c.Profile); err != nil {
		return models.Case{}, err
	}
	if !c.Outcome.Valid() {
		return models.Case{}, fmt.Errorf("unknown outcome %q", c.Outcome)
	}

	snap := a.holder.Current()
	ids := make([]string, 0, len(c.Ingredients))
	for _, name := range c.Ingredients {
		if strings.TrimSpace(name) == "" {
			continue
		}
		ing, err := snap.Graph.Lookup(name)
		if err != nil {
			return models.Case{}, &UnknownIngredientError{Input: name, Suggestions: suggest(snap.Graph, name, a.suggestions)}
		}
		if !slices.Contains(ids, ing.ID) {
			ids = append(ids, ing.ID)
		}
	}
	if len(ids) == 0 {
		return models.Case{}, fmt.Errorf("case has no ingredients")
	}
	c.Ingredients = ids
	c.Profile = resolveProfile(snap, c.Profile)

	stored, next, err := a.holder.Curate(c)
	if err != nil {
		return models.Case{}, err
	}
	a.logger.Debug("case base grew", "case", stored.ID, "version", next.Version)
	return stored, nil
}
