// Package cbr recommends ingredient sets by analogy to stored cases: it
// retrieves the profiles most similar to a new one and adapts their
// ingredient sets, learning from both good and poor outcomes.
package cbr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

// ErrInvalidCaseData indicates malformed case records. Fatal at build time.
var ErrInvalidCaseData = errors.New("invalid case data")

// Source supplies the initial case set.
type Source interface {
	LoadCases(ctx context.Context) ([]models.Case, error)
}

// CaseBase is an immutable collection of cases. Growing it means creating
// a new base through Curate.
type CaseBase struct {
	cases []models.Case
	index map[string]int
}

// NewCaseBase validates the cases and builds a case base. When g is non-nil
// every case ingredient must exist in it.
func NewCaseBase(cases []models.Case, g *graph.Graph) (*CaseBase, error) {
	cb := &CaseBase{
		cases: make([]models.Case, 0, len(cases)),
		index: make(map[string]int, len(cases)),
	}

	var problems []error
	for _, c := range cases {
		if err := validateCase(c, g); err != nil {
			problems = append(problems, err)
			continue
		}
		if _, dup := cb.index[c.ID]; dup {
			problems = append(problems, fmt.Errorf("duplicate case id %q", c.ID))
			continue
		}
		cb.index[c.ID] = len(cb.cases)
		cb.cases = append(cb.cases, cloneCase(c))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCaseData, errors.Join(problems...))
	}
	return cb, nil
}

// Load reads cases from src and validates them against g.
func Load(ctx context.Context, src Source, g *graph.Graph) (*CaseBase, error) {
	cases, err := src.LoadCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	return NewCaseBase(cases, g)
}

func validateCase(c models.Case, g *graph.Graph) error {
	var problems []string
	if strings.TrimSpace(c.ID) == "" {
		problems = append(problems, "empty id")
	}
	if !c.Outcome.Valid() {
		problems = append(problems, fmt.Sprintf("unknown outcome %q", c.Outcome))
	}
	if !c.Profile.SkinType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown skin type %q", c.Profile.SkinType))
	}
	if s := c.Profile.Sensitivity; s < models.MinSensitivity || s > models.MaxSensitivity {
		problems = append(problems, fmt.Sprintf("sensitivity %d outside %d-%d", s, models.MinSensitivity, models.MaxSensitivity))
	}
	for _, concern := range c.Profile.Concerns {
		if !concern.Valid() {
			problems = append(problems, fmt.Sprintf("unknown concern %q", concern))
		}
	}
	if len(c.Ingredients) == 0 {
		problems = append(problems, "no ingredients")
	}
	if g != nil {
		for _, id := range c.Ingredients {
			if !g.Has(id) {
				problems = append(problems, fmt.Sprintf("unknown ingredient %q", id))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("case %q: %s", c.ID, strings.Join(problems, "; "))
	}
	return nil
}

func cloneCase(c models.Case) models.Case {
	c.Ingredients = slices.Clone(c.Ingredients)
	c.Profile.Concerns = slices.Clone(c.Profile.Concerns)
	c.Profile.Current = slices.Clone(c.Profile.Current)
	c.Profile.Avoid = slices.Clone(c.Profile.Avoid)
	return c
}

// Curate returns a new case base holding every existing case plus c. An
// empty id is filled with a time-ordered UUIDv7 so newer cases sort later.
// The receiver is unchanged.
func (cb *CaseBase) Curate(c models.Case, g *graph.Graph) (*CaseBase, models.Case, error) {
	if c.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, models.Case{}, fmt.Errorf("generate case id: %w", err)
		}
		c.ID = id.String()
	}
	next, err := NewCaseBase(append(cb.Cases(), c), g)
	if err != nil {
		return nil, models.Case{}, err
	}
	return next, cloneCase(c), nil
}

// Cases returns copies of every case in insertion order.
func (cb *CaseBase) Cases() []models.Case {
	out := make([]models.Case, len(cb.cases))
	for i, c := range cb.cases {
		out[i] = cloneCase(c)
	}
	return out
}

// Get returns the case with the given id.
func (cb *CaseBase) Get(id string) (models.Case, bool) {
	i, ok := cb.index[id]
	if !ok {
		return models.Case{}, false
	}
	return cloneCase(cb.cases[i]), true
}

// Len returns the number of cases.
func (cb *CaseBase) Len() int { return len(cb.cases) }
