package cbr

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"golang.org/x/sync/errgroup"
)

// Status tells the caller whether the recommendation can be trusted.
type Status string

const (
	StatusMatched Status = "matched"
	// StatusNoSimilarCase means the best match is below Config.MinSimilarity;
	// callers should use the diagnostic fallback instead.
	StatusNoSimilarCase Status = "no_similar_case"
)

// OutcomeWeights scale a case's contribution by its outcome label.
type OutcomeWeights struct {
	Successful float64 `json:"successful"`
	Neutral    float64 `json:"neutral"`
	Poor       float64 `json:"poor"`
}

func (w OutcomeWeights) of(o models.Outcome) float64 {
	switch o {
	case models.OutcomeSuccessful:
		return w.Successful
	case models.OutcomeNeutral:
		return w.Neutral
	default:
		return w.Poor
	}
}

const (
	DefaultTopK          = 3
	DefaultMinSimilarity = 0.35
	DefaultParallelCases = 1024
)

// Config tunes retrieval and adaptation.
type Config struct {
	Weights       Weights
	Outcomes      OutcomeWeights
	TopK          int
	MinSimilarity float64
	ParallelCases int // case count at which scoring fans out; negative disables
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Weights:       DefaultWeights(),
		Outcomes:      OutcomeWeights{Successful: 1, Neutral: 0.5, Poor: 0},
		TopK:          DefaultTopK,
		MinSimilarity: DefaultMinSimilarity,
		ParallelCases: DefaultParallelCases,
	}
}

// Match is a retrieved case with its similarity score.
type Match struct {
	Case  models.Case `json:"case"`
	Score float64     `json:"score"`
}

// WeightedIngredient is an adapted ingredient and the cases supporting it.
// Weight is the share of retrieved evidence behind it, in [0,1].
type WeightedIngredient struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Weight  float64  `json:"weight"`
	Support []string `json:"support"`
}

// Exclusion is an ingredient withheld from the adapted set.
type Exclusion struct {
	ID     string `json:"id"`
	CaseID string `json:"case_id,omitempty"`
	Reason string `json:"reason"`
}

// Recommendation is the adapted, conflict-free ingredient set.
type Recommendation struct {
	Status      Status               `json:"status"`
	BestScore   float64              `json:"best_score"`
	Matches     []Match              `json:"matches"`
	Ingredients []WeightedIngredient `json:"ingredients"`
	Excluded    []Exclusion          `json:"excluded,omitempty"`
	Removed     []conflict.Removal   `json:"removed,omitempty"`
	Notes       []models.Note        `json:"notes,omitempty"`
}

// IDs returns the recommended ingredient ids in ranked order.
func (r Recommendation) IDs() []string {
	out := make([]string, len(r.Ingredients))
	for i, wi := range r.Ingredients {
		out[i] = wi.ID
	}
	return out
}

// Engine runs retrieval and adaptation over one case base and graph.
// Safe for concurrent use.
type Engine struct {
	cases    *CaseBase
	detector *conflict.Detector
	graph    *graph.Graph
	cfg      Config
}

// NewEngine creates an engine. Adapted sets are validated with d. Zero
// weights, outcome weights and TopK fall back to the defaults.
func NewEngine(cases *CaseBase, d *conflict.Detector, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Weights.total() <= 0 {
		cfg.Weights = def.Weights
	}
	if cfg.Outcomes == (OutcomeWeights{}) {
		cfg.Outcomes = def.Outcomes
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.ParallelCases == 0 {
		cfg.ParallelCases = DefaultParallelCases
	}
	return &Engine{cases: cases, detector: d, graph: d.Graph(), cfg: cfg}
}

// Config returns the engine settings after defaults were applied.
func (e *Engine) Config() Config { return e.cfg }

// Retrieve scores every case and returns the top k by score, ties going
// to the most recently added case.
func (e *Engine) Retrieve(profile models.SkinProfile) []Match {
	cases := e.cases.cases
	scores := make([]float64, len(cases))

	score := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			scores[i] = Similarity(profile, cases[i].Profile, e.cfg.Weights)
		}
	}

	if e.cfg.ParallelCases > 0 && len(cases) >= e.cfg.ParallelCases {
		workers := runtime.GOMAXPROCS(0)
		chunk := (len(cases) + workers - 1) / workers
		var eg errgroup.Group
		for lo := 0; lo < len(cases); lo += chunk {
			hi := min(lo+chunk, len(cases))
			eg.Go(func() error {
				score(lo, hi)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		score(0, len(cases))
	}

	// Case ids are free-form, so recency is the position in the case base.
	order := make([]int, len(cases))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(scores[b], scores[a]),
			cmp.Compare(b, a),
		)
	})

	top := order[:min(e.cfg.TopK, len(order))]
	out := make([]Match, len(top))
	for i, idx := range top {
		out[i] = Match{Case: cloneCase(cases[idx]), Score: scores[idx]}
	}
	return out
}

// Recommend retrieves similar cases and adapts their ingredient sets.
// Below the similarity threshold it returns StatusNoSimilarCase and no
// ingredients. The returned set never holds an internal conflict.
func (e *Engine) Recommend(profile models.SkinProfile) Recommendation {
	matches := e.Retrieve(profile)
	rec := Recommendation{
		Status:      StatusNoSimilarCase,
		Matches:     matches,
		Ingredients: []WeightedIngredient{},
	}
	if len(matches) > 0 {
		rec.BestScore = matches[0].Score
	}
	if len(matches) == 0 || rec.BestScore < e.cfg.MinSimilarity {
		return rec
	}
	rec.Status = StatusMatched

	weights, support, total := e.accumulate(matches)
	var excluded []Exclusion
	for _, x := range e.negativeTransfer(profile, matches) {
		// Only ingredients the adaptation would recommend can be withheld.
		if w, ok := weights[x.ID]; ok && w > 0 && x.against >= w {
			excluded = append(excluded, x.Exclusion)
		}
	}
	for id := range weights {
		if profile.Avoids(id) && !slices.ContainsFunc(excluded, func(x Exclusion) bool { return x.ID == id }) {
			excluded = append(excluded, Exclusion{ID: id, Reason: "on the profile's avoid list"})
		}
	}
	slices.SortFunc(excluded, func(a, b Exclusion) int { return strings.Compare(a.ID, b.ID) })
	for _, x := range excluded {
		delete(weights, x.ID)
	}
	rec.Excluded = excluded

	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(weights[b], weights[a]), strings.Compare(a, b))
	})

	kept, removed := e.detector.Prune(ids, func(id string) float64 { return weights[id] })
	rec.Removed = removed

	for _, id := range kept {
		ing, _ := e.graph.Get(id)
		rec.Ingredients = append(rec.Ingredients, WeightedIngredient{
			ID:      id,
			Name:    ing.Name,
			Weight:  weights[id] / total,
			Support: support[id],
		})
		if profile.SkinType != "" && ing.CautionFor(profile.SkinType) {
			rec.Notes = append(rec.Notes, models.Note{
				Kind:        models.NoteSkinTypeCaution,
				Ingredients: []string{id},
				Message:     fmt.Sprintf("%s needs caution for %s skin", ing.Name, profile.SkinType),
			})
		}
	}
	return rec
}

// accumulate unions the retrieved ingredient sets, each case weighted by
// its score and outcome. Cases whose outcome weight is zero add nothing.
func (e *Engine) accumulate(matches []Match) (map[string]float64, map[string][]string, float64) {
	weights := make(map[string]float64)
	support := make(map[string][]string)
	var total float64

	for _, m := range matches {
		w := m.Score * e.cfg.Outcomes.of(m.Case.Outcome)
		total += w
		if w <= 0 {
			continue
		}
		for _, id := range m.Case.Ingredients {
			if !slices.Contains(support[id], m.Case.ID) {
				weights[id] += w
				support[id] = append(support[id], m.Case.ID)
			}
		}
	}
	if total <= 0 {
		total = 1
	}
	return weights, support, total
}

type negative struct {
	Exclusion
	against float64
}

// negativeTransfer collects evidence against ingredients of poor-outcome
// cases that target a concern the new profile shares with that case. The
// evidence is the summed score of those cases; Recommend withholds an
// ingredient when it is at least the positive evidence for it.
func (e *Engine) negativeTransfer(profile models.SkinProfile, matches []Match) []negative {
	var out []negative
	index := make(map[string]int)

	for _, m := range matches {
		if m.Case.Outcome != models.OutcomePoor {
			continue
		}
		var shared []models.Concern
		for _, c := range m.Case.Profile.Concerns {
			if profile.HasConcern(c) {
				shared = append(shared, c)
			}
		}
		if len(shared) == 0 {
			continue
		}

		for _, id := range m.Case.Ingredients {
			ing, ok := e.graph.Get(id)
			if !ok {
				continue
			}
			i := slices.IndexFunc(shared, ing.Addresses)
			if i < 0 {
				continue
			}
			if at, seen := index[id]; seen {
				out[at].against += m.Score
				continue
			}
			index[id] = len(out)
			out = append(out, negative{
				Exclusion: Exclusion{
					ID:     id,
					CaseID: m.Case.ID,
					Reason: fmt.Sprintf("poor outcome for a similar profile treating %s", shared[i]),
				},
				against: m.Score,
			})
		}
	}
	return out
}
