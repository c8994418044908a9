package cbr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concerns(cs ...models.Concern) []models.Concern { return cs }

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	ings := []models.Ingredient{
		{ID: "retinol", Name: "Retinol", Category: models.CategoryRetinoid, TimeOfDay: models.EveningOnly, Concerns: concerns(models.ConcernAging, models.ConcernAcne), CautionSkinTypes: []models.SkinType{models.SkinSensitive}},
		{ID: "vitamin_c", Name: "Vitamin C", Category: models.CategoryVitaminC, TimeOfDay: models.MorningOnly, Concerns: concerns(models.ConcernHyperpigmentation, models.ConcernDullness, models.ConcernAging)},
		{ID: "niacinamide", Name: "Niacinamide", Category: models.CategoryNiacinamide, TimeOfDay: models.Both, Concerns: concerns(models.ConcernAcne, models.ConcernPores, models.ConcernRedness)},
		{ID: "hyaluronic_acid", Name: "Hyaluronic Acid", Category: models.CategoryHumectant, TimeOfDay: models.Both, Concerns: concerns(models.ConcernDryness, models.ConcernDehydration)},
		{ID: "ceramides", Name: "Ceramides", Category: models.CategoryCeramide, TimeOfDay: models.Both, Concerns: concerns(models.ConcernDryness, models.ConcernSensitivity)},
		{ID: "salicylic_acid", Name: "Salicylic Acid", Category: models.CategoryExfoliant, TimeOfDay: models.Either, Concerns: concerns(models.ConcernAcne, models.ConcernPores)},
		{ID: "benzoyl_peroxide", Name: "Benzoyl Peroxide", Category: models.CategoryBenzoylPeroxide, TimeOfDay: models.Either, Concerns: concerns(models.ConcernAcne)},
		{ID: "azelaic_acid", Name: "Azelaic Acid", Category: models.CategoryAzelaicAcid, TimeOfDay: models.Either, Concerns: concerns(models.ConcernRedness, models.ConcernAcne, models.ConcernHyperpigmentation)},
	}
	edges := []models.InteractionEdge{
		{A: "retinol", B: "vitamin_c", Kind: models.KindConflict, Explanation: "different pH optima", Severity: 6},
		{A: "retinol", B: "benzoyl_peroxide", Kind: models.KindConflict, Explanation: "oxidizes retinol", Severity: 9},
		{A: "benzoyl_peroxide", B: "vitamin_c", Kind: models.KindConflict, Explanation: "oxidizes vitamin C", Severity: 8},
	}
	g, err := graph.New(ings, edges)
	require.NoError(t, err)
	return g
}

func testCases() []models.Case {
	return []models.Case{
		{ID: "c001", Profile: models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne, models.ConcernPores), Sensitivity: 2}, Ingredients: []string{"salicylic_acid", "niacinamide"}, Outcome: models.OutcomeSuccessful},
		{ID: "c002", Profile: models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2}, Ingredients: []string{"benzoyl_peroxide", "niacinamide"}, Outcome: models.OutcomePoor},
		{ID: "c003", Profile: models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness, models.ConcernAging), Sensitivity: 3}, Ingredients: []string{"hyaluronic_acid", "ceramides", "retinol"}, Outcome: models.OutcomeSuccessful},
		{ID: "c004", Profile: models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernAging, models.ConcernHyperpigmentation), Sensitivity: 2}, Ingredients: []string{"vitamin_c", "hyaluronic_acid"}, Outcome: models.OutcomeSuccessful},
		{ID: "c005", Profile: models.SkinProfile{SkinType: models.SkinSensitive, Concerns: concerns(models.ConcernRedness, models.ConcernSensitivity), Sensitivity: 5}, Ingredients: []string{"azelaic_acid", "ceramides"}, Outcome: models.OutcomeNeutral},
		{ID: "c006", Profile: models.SkinProfile{SkinType: models.SkinNormal, Concerns: concerns(models.ConcernAging, models.ConcernHyperpigmentation), Sensitivity: 3}, Ingredients: []string{"retinol", "vitamin_c", "hyaluronic_acid"}, Outcome: models.OutcomeSuccessful},
	}
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	g := testGraph(t)
	cb, err := NewCaseBase(testCases(), g)
	require.NoError(t, err)
	return NewEngine(cb, conflict.NewDetector(g, conflict.DefaultConfig()), cfg)
}

func TestSimilarity(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name string
		a, b models.SkinProfile
		want float64
	}{
		{
			name: "identical",
			a:    models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2},
			b:    models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2},
			want: 1,
		},
		{
			name: "half concern overlap",
			a:    models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2},
			b:    models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne, models.ConcernPores), Sensitivity: 2},
			want: 0.8,
		},
		{
			name: "nothing shared but sensitivity distance",
			a:    models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness), Sensitivity: 1},
			b:    models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 3},
			want: 0.1,
		},
		{
			name: "opposite ends",
			a:    models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness), Sensitivity: 1},
			b:    models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 5},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b, w), 1e-9)
			assert.InDelta(t, tt.want, Similarity(tt.b, tt.a, w), 1e-9)
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	for _, c := range testCases() {
		for _, d := range testCases() {
			s := Similarity(c.Profile, d.Profile, DefaultWeights())
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
	assert.Equal(t, 0.0, Similarity(models.SkinProfile{}, models.SkinProfile{}, Weights{}))
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []models.Concern
		want float64
	}{
		{"both empty", nil, nil, 1},
		{"one empty", concerns(models.ConcernAcne), nil, 0},
		{"disjoint", concerns(models.ConcernAcne), concerns(models.ConcernAging), 0},
		{"equal", concerns(models.ConcernAcne, models.ConcernPores), concerns(models.ConcernPores, models.ConcernAcne), 1},
		{"partial", concerns(models.ConcernAcne, models.ConcernPores, models.ConcernRedness), concerns(models.ConcernAcne), 1.0 / 3},
		{"duplicates ignored", concerns(models.ConcernAcne, models.ConcernAcne), concerns(models.ConcernAcne), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSensitivityProximity(t *testing.T) {
	assert.Equal(t, 1.0, SensitivityProximity(3, 3))
	assert.Equal(t, 0.0, SensitivityProximity(1, 5))
	assert.Equal(t, 0.75, SensitivityProximity(2, 3))
	// out-of-range values clamp
	assert.Equal(t, 1.0, SensitivityProximity(0, 1))
	assert.Equal(t, 1.0, SensitivityProximity(9, 5))
}

func TestRetrieveTopK(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	matches := e.Retrieve(models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2})
	require.Len(t, matches, 3)
	assert.Equal(t, "c002", matches[0].Case.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, "c001", matches[1].Case.ID)
	assert.InDelta(t, 0.8, matches[1].Score, 1e-9)
	assert.Equal(t, "c004", matches[2].Case.ID)
}

func TestRetrieveTieBreaksByRecency(t *testing.T) {
	g := testGraph(t)
	p := models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness), Sensitivity: 3}
	d := conflict.NewDetector(g, conflict.DefaultConfig())
	cfg := Config{Weights: DefaultWeights(), TopK: 2}

	tests := []struct {
		name  string
		cases []models.Case
		want  []string
	}{
		{
			name: "insertion order not id order",
			cases: []models.Case{
				{ID: "c009", Profile: p, Ingredients: []string{"ceramides"}, Outcome: models.OutcomeSuccessful},
				{ID: "c010", Profile: p, Ingredients: []string{"hyaluronic_acid"}, Outcome: models.OutcomeSuccessful},
				{ID: "c008", Profile: p, Ingredients: []string{"ceramides"}, Outcome: models.OutcomeNeutral},
			},
			want: []string{"c008", "c010"},
		},
		{
			name: "free-form ids",
			cases: []models.Case{
				{ID: "zz-legacy", Profile: p, Ingredients: []string{"ceramides"}, Outcome: models.OutcomeSuccessful},
				{ID: "alpha", Profile: p, Ingredients: []string{"hyaluronic_acid"}, Outcome: models.OutcomeSuccessful},
			},
			want: []string{"alpha", "zz-legacy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := NewCaseBase(tt.cases, g)
			require.NoError(t, err)

			var got []string
			for _, m := range NewEngine(cb, d, cfg).Retrieve(p) {
				got = append(got, m.Case.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetrieveCuratedCaseWinsTie(t *testing.T) {
	g := testGraph(t)
	p := models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness), Sensitivity: 3}
	cb, err := NewCaseBase([]models.Case{
		{ID: "zz-legacy", Profile: p, Ingredients: []string{"ceramides"}, Outcome: models.OutcomeSuccessful},
	}, g)
	require.NoError(t, err)

	next, added, err := cb.Curate(models.Case{Profile: p, Ingredients: []string{"hyaluronic_acid"}, Outcome: models.OutcomeSuccessful}, g)
	require.NoError(t, err)
	require.Less(t, added.ID, "zz-legacy")

	matches := NewEngine(next, conflict.NewDetector(g, conflict.DefaultConfig()), Config{Weights: DefaultWeights(), TopK: 2}).Retrieve(p)
	require.Len(t, matches, 2)
	assert.Equal(t, added.ID, matches[0].Case.ID)
	assert.Equal(t, "zz-legacy", matches[1].Case.ID)
}

func TestRetrieveParallelMatchesSequential(t *testing.T) {
	g := testGraph(t)
	var cases []models.Case
	for i := 0; i < 200; i++ {
		c := testCases()[i%6]
		c.ID = fmt.Sprintf("c%04d", i)
		c.Profile.Sensitivity = 1 + i%5
		cases = append(cases, c)
	}
	cb, err := NewCaseBase(cases, g)
	require.NoError(t, err)
	d := conflict.NewDetector(g, conflict.DefaultConfig())

	seqCfg, parCfg := DefaultConfig(), DefaultConfig()
	seqCfg.ParallelCases, seqCfg.TopK = -1, 50
	parCfg.ParallelCases, parCfg.TopK = 1, 50

	p := models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernAging), Sensitivity: 3}
	assert.Equal(t, NewEngine(cb, d, seqCfg).Retrieve(p), NewEngine(cb, d, parCfg).Retrieve(p))
	assert.Equal(t, NewEngine(cb, d, seqCfg).Recommend(p), NewEngine(cb, d, parCfg).Recommend(p))
}

func TestRecommendNegativeTransfer(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2})
	require.Equal(t, StatusMatched, rec.Status)

	// c002 (poor, score 1.0) outweighs c001's support for niacinamide (0.8).
	// benzoyl_peroxide only appears in c002, so there is nothing to withhold.
	assert.Equal(t, []string{"salicylic_acid", "hyaluronic_acid", "vitamin_c"}, rec.IDs())
	require.Len(t, rec.Excluded, 1)
	assert.Equal(t, "niacinamide", rec.Excluded[0].ID)
	assert.Equal(t, "c002", rec.Excluded[0].CaseID)
	assert.Contains(t, rec.Excluded[0].Reason, "acne")
}

func TestRecommendPositiveEvidenceOutweighsPoor(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne, models.ConcernPores), Sensitivity: 2})
	require.Equal(t, StatusMatched, rec.Status)

	assert.Contains(t, rec.IDs(), "niacinamide")
	assert.NotContains(t, rec.IDs(), "benzoyl_peroxide")
	assert.Empty(t, rec.Excluded)
}

func TestRecommendExcludesOnlyCandidates(t *testing.T) {
	g := testGraph(t)
	p := models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 2}

	tests := []struct {
		name         string
		cases        []models.Case
		wantIDs      []string
		wantExcluded []string
	}{
		{
			name: "poor only ingredient",
			cases: []models.Case{
				{ID: "c001", Profile: p, Ingredients: []string{"salicylic_acid"}, Outcome: models.OutcomeSuccessful},
				{ID: "c002", Profile: p, Ingredients: []string{"benzoyl_peroxide"}, Outcome: models.OutcomePoor},
			},
			wantIDs: []string{"salicylic_acid"},
		},
		{
			name: "shared ingredient outweighed",
			cases: []models.Case{
				{ID: "c001", Profile: p, Ingredients: []string{"salicylic_acid", "niacinamide"}, Outcome: models.OutcomeNeutral},
				{ID: "c002", Profile: p, Ingredients: []string{"benzoyl_peroxide", "niacinamide"}, Outcome: models.OutcomePoor},
			},
			wantIDs:      []string{"salicylic_acid"},
			wantExcluded: []string{"niacinamide"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := NewCaseBase(tt.cases, g)
			require.NoError(t, err)
			rec := NewEngine(cb, conflict.NewDetector(g, conflict.DefaultConfig()), DefaultConfig()).Recommend(p)
			require.Equal(t, StatusMatched, rec.Status)

			assert.Equal(t, tt.wantIDs, rec.IDs())
			var excluded []string
			for _, x := range rec.Excluded {
				excluded = append(excluded, x.ID)
			}
			assert.Equal(t, tt.wantExcluded, excluded)
		})
	}
}

func TestRecommendIsConflictFree(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinNormal, Concerns: concerns(models.ConcernAging, models.ConcernHyperpigmentation), Sensitivity: 3})
	require.Equal(t, StatusMatched, rec.Status)

	require.Len(t, rec.Removed, 1)
	assert.Equal(t, "retinol", rec.Removed[0].ID)
	assert.Equal(t, "vitamin_c", rec.Removed[0].ConflictsWith)
	assert.Empty(t, e.detector.Classify(rec.IDs()).Conflicts)

	assert.Equal(t, "hyaluronic_acid", rec.Ingredients[0].ID)
	assert.ElementsMatch(t, []string{"c003", "c004", "c006"}, rec.Ingredients[0].Support)
	for _, wi := range rec.Ingredients {
		assert.Greater(t, wi.Weight, 0.0)
		assert.LessOrEqual(t, wi.Weight, 1.0)
	}
}

func TestRecommendValidityAcrossProfiles(t *testing.T) {
	e := newTestEngine(t, Config{Weights: DefaultWeights(), Outcomes: OutcomeWeights{Successful: 1, Neutral: 1, Poor: 1}, TopK: 6})

	for _, st := range models.SkinTypes {
		for _, c := range models.Concerns {
			for s := models.MinSensitivity; s <= models.MaxSensitivity; s++ {
				rec := e.Recommend(models.SkinProfile{SkinType: st, Concerns: concerns(c), Sensitivity: s})
				assert.Empty(t, e.detector.Classify(rec.IDs()).Conflicts, "%s/%s/%d", st, c, s)
			}
		}
	}
}

func TestRecommendSkinTypeCaution(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinSensitive, Concerns: concerns(models.ConcernDryness, models.ConcernAging), Sensitivity: 3})
	require.Equal(t, StatusMatched, rec.Status)
	assert.Contains(t, rec.IDs(), "retinol")
	assert.NotContains(t, rec.IDs(), "vitamin_c")
	require.Len(t, rec.Notes, 1)
	assert.Equal(t, models.NoteSkinTypeCaution, rec.Notes[0].Kind)
}

func TestRecommendAvoidList(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness, models.ConcernAging), Sensitivity: 3, Avoid: []string{"retinol"}})
	require.Equal(t, StatusMatched, rec.Status)
	assert.NotContains(t, rec.IDs(), "retinol")
	require.NotEmpty(t, rec.Excluded)
	assert.Equal(t, "retinol", rec.Excluded[0].ID)
	assert.Contains(t, rec.Excluded[0].Reason, "avoid")
}

func TestRecommendNoSimilarCase(t *testing.T) {
	g := testGraph(t)
	cb, err := NewCaseBase([]models.Case{
		{ID: "c001", Profile: models.SkinProfile{SkinType: models.SkinOily, Concerns: concerns(models.ConcernAcne), Sensitivity: 3}, Ingredients: []string{"salicylic_acid"}, Outcome: models.OutcomeSuccessful},
	}, g)
	require.NoError(t, err)
	e := NewEngine(cb, conflict.NewDetector(g, conflict.DefaultConfig()), DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinDry, Concerns: concerns(models.ConcernDryness), Sensitivity: 1})
	assert.Equal(t, StatusNoSimilarCase, rec.Status)
	assert.InDelta(t, 0.1, rec.BestScore, 1e-9)
	assert.Empty(t, rec.Ingredients)
	assert.Len(t, rec.Matches, 1)
}

func TestRecommendEmptyCaseBase(t *testing.T) {
	g := testGraph(t)
	cb, err := NewCaseBase(nil, g)
	require.NoError(t, err)
	e := NewEngine(cb, conflict.NewDetector(g, conflict.DefaultConfig()), DefaultConfig())

	rec := e.Recommend(models.SkinProfile{SkinType: models.SkinDry, Sensitivity: 2})
	assert.Equal(t, StatusNoSimilarCase, rec.Status)
	assert.Empty(t, rec.Matches)
}

func TestNewCaseBaseInvalid(t *testing.T) {
	g := testGraph(t)
	good := testCases()[0]

	tests := []struct {
		name    string
		mutate  func(c models.Case) []models.Case
		wantMsg string
	}{
		{"unknown ingredient", func(c models.Case) []models.Case { c.Ingredients = []string{"snail_mucin"}; return []models.Case{c} }, `unknown ingredient "snail_mucin"`},
		{"duplicate id", func(c models.Case) []models.Case { return []models.Case{c, c} }, "duplicate case id"},
		{"bad outcome", func(c models.Case) []models.Case { c.Outcome = "great"; return []models.Case{c} }, "unknown outcome"},
		{"bad sensitivity", func(c models.Case) []models.Case { c.Profile.Sensitivity = 9; return []models.Case{c} }, "sensitivity 9"},
		{"bad skin type", func(c models.Case) []models.Case { c.Profile.SkinType = "scaly"; return []models.Case{c} }, "unknown skin type"},
		{"empty id", func(c models.Case) []models.Case { c.ID = " "; return []models.Case{c} }, "empty id"},
		{"no ingredients", func(c models.Case) []models.Case { c.Ingredients = nil; return []models.Case{c} }, "no ingredients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := NewCaseBase(tt.mutate(good), g)
			require.Error(t, err)
			assert.Nil(t, cb)
			assert.True(t, errors.Is(err, ErrInvalidCaseData))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCurate(t *testing.T) {
	g := testGraph(t)
	cb, err := NewCaseBase(testCases(), g)
	require.NoError(t, err)

	next, added, err := cb.Curate(models.Case{
		Profile:     models.SkinProfile{SkinType: models.SkinCombination, Concerns: concerns(models.ConcernPores), Sensitivity: 2},
		Ingredients: []string{"niacinamide"},
		Outcome:     models.OutcomeSuccessful,
	}, g)
	require.NoError(t, err)

	assert.Equal(t, 6, cb.Len())
	assert.Equal(t, 7, next.Len())

	id, err := uuid.Parse(added.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	got, ok := next.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"niacinamide"}, got.Ingredients)
	_, ok = cb.Get(added.ID)
	assert.False(t, ok)

	_, _, err = next.Curate(models.Case{ID: added.ID, Profile: got.Profile, Ingredients: got.Ingredients, Outcome: got.Outcome}, g)
	assert.True(t, errors.Is(err, ErrInvalidCaseData))
}

func TestCaseBaseCopies(t *testing.T) {
	cb, err := NewCaseBase(testCases(), testGraph(t))
	require.NoError(t, err)

	cases := cb.Cases()
	cases[0].Ingredients[0] = "mutated"
	got, ok := cb.Get(cases[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", got.Ingredients[0])
}
