package routine

import (
	"errors"
	"strings"
	"testing"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer(t *testing.T, cfg Config, extra ...models.InteractionEdge) *Sequencer {
	t.Helper()
	ings := []models.Ingredient{
		{ID: "cleanser", Name: "Gentle Cleanser", Category: models.CategoryCleanser, TimeOfDay: models.Both},
		{ID: "vitamin_c", Name: "Vitamin C", Aliases: []string{"ascorbic acid"}, Category: models.CategoryVitaminC, TimeOfDay: models.MorningOnly},
		{ID: "moisturizer", Name: "Moisturizer", Category: models.CategoryMoisturizer, TimeOfDay: models.Both},
		{ID: "spf", Name: "Sunscreen", Aliases: []string{"sunscreen"}, Category: models.CategorySunscreen, TimeOfDay: models.MorningOnly},
		{ID: "retinol", Name: "Retinol", Category: models.CategoryRetinoid, TimeOfDay: models.EveningOnly, CautionSkinTypes: []models.SkinType{models.SkinSensitive}, Guidance: "start twice a week"},
		{ID: "glycolic_acid", Name: "Glycolic Acid", Category: models.CategoryExfoliant, TimeOfDay: models.EveningOnly},
		{ID: "niacinamide", Name: "Niacinamide", Category: models.CategoryNiacinamide, TimeOfDay: models.Both},
		{ID: "hyaluronic_acid", Name: "Hyaluronic Acid", Category: models.CategoryHumectant, TimeOfDay: models.Both},
		{ID: "benzoyl_peroxide", Name: "Benzoyl Peroxide", Category: models.CategoryBenzoylPeroxide, TimeOfDay: models.Either},
		{ID: "salicylic_acid", Name: "Salicylic Acid", Category: models.CategoryExfoliant, TimeOfDay: models.Either},
	}
	edges := []models.InteractionEdge{
		{A: "retinol", B: "vitamin_c", Kind: models.KindConflict, Explanation: "different pH optima", Severity: 6},
		{A: "retinol", B: "benzoyl_peroxide", Kind: models.KindConflict, Explanation: "benzoyl peroxide oxidizes retinol", Severity: 9},
		{A: "benzoyl_peroxide", B: "vitamin_c", Kind: models.KindConflict, Explanation: "benzoyl peroxide oxidizes vitamin C", Severity: 8},
		{A: "retinol", B: "glycolic_acid", Kind: models.KindConflict, Explanation: "over-exfoliation", Recommendation: "alternate nights", Severity: 8},
		{A: "retinol", B: "niacinamide", Kind: models.KindSynergy, Explanation: "niacinamide soothes retinoid irritation", ApplyFirst: "niacinamide", Severity: 3},
		{A: "vitamin_c", B: "spf", Kind: models.KindSynergy, Explanation: "antioxidant boost under sunscreen", ApplyFirst: "vitamin_c", Severity: 3},
		{A: "niacinamide", B: "hyaluronic_acid", Kind: models.KindSynergy, Explanation: "hydration plus barrier support", Severity: 2},
		{A: "vitamin_c", B: "niacinamide", Kind: models.KindCaution, Explanation: "flushing at high strength", WaitMinutes: 10, Severity: 3},
	}
	g, err := graph.New(ings, append(edges, extra...))
	require.NoError(t, err)
	return NewSequencer(conflict.NewDetector(g, conflict.DefaultConfig()), cfg)
}

func items(names ...string) []Item {
	out := make([]Item, len(names))
	for i, n := range names {
		out[i] = Item{Name: n}
	}
	return out
}

func stepKeys(steps []models.RoutineStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = strings.Join(s.Ingredients, "+")
	}
	return out
}

func notesOf(res Result, kind models.NoteKind) []models.Note {
	var out []models.Note
	for _, n := range res.Notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestBuildMorningOrder(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(items("moisturizer", "spf", "Vitamin C", "cleanser"), nil)
	require.NoError(t, err)

	assert.False(t, res.Empty)
	assert.Equal(t, []string{"cleanser", "vitamin_c", "moisturizer", "spf"}, stepKeys(res.Routine.AM))
	assert.Equal(t, []string{"cleanser", "moisturizer"}, stepKeys(res.Routine.PM))
	assert.Empty(t, res.Unresolved)
	assert.Empty(t, notesOf(res, models.NoteMissingEssential))
	assert.Len(t, notesOf(res, models.NoteSynergy), 1)

	for i, step := range res.Routine.AM {
		assert.Equal(t, i+1, step.Position)
		assert.Equal(t, models.SlotAM, step.Slot)
	}
	assert.Equal(t, "Gentle Cleanser", res.Routine.AM[0].Name)
}

func TestBuildMovesFlexibleItemOutOfConflict(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(items("vitamin_c", "benzoyl_peroxide"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"vitamin_c"}, stepKeys(res.Routine.AM))
	assert.Equal(t, []string{"benzoyl_peroxide"}, stepKeys(res.Routine.PM))
	assert.Empty(t, res.Unresolved)

	moved := notesOf(res, models.NoteMoved)
	require.Len(t, moved, 1)
	assert.Equal(t, models.SlotPM, moved[0].Slot)
	assert.Equal(t, []string{"benzoyl_peroxide"}, moved[0].Ingredients)
}

func TestBuildUnresolvedWhenNoLegalMove(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(items("benzoyl_peroxide", "retinol", "vitamin_c"), nil)
	require.NoError(t, err)

	// benzoyl peroxide cannot join retinol in PM and vitamin C is morning-only
	require.Len(t, res.Unresolved, 1)
	u := res.Unresolved[0]
	assert.Equal(t, models.SlotAM, u.Slot)
	assert.Equal(t, "benzoyl_peroxide", u.A)
	assert.Equal(t, "vitamin_c", u.B)
	assert.NotEmpty(t, u.Explanation)

	assert.Equal(t, []string{"vitamin_c", "benzoyl_peroxide"}, stepKeys(res.Routine.AM))
	assert.Equal(t, []string{"retinol"}, stepKeys(res.Routine.PM))
}

func TestBuildUnresolvedFixedSlots(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(items("retinol", "glycolic_acid"), nil)
	require.NoError(t, err)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, models.SlotPM, res.Unresolved[0].Slot)
	assert.Equal(t, 8, res.Unresolved[0].Severity)
	assert.Equal(t, "alternate nights", res.Unresolved[0].Recommendation)
	assert.ElementsMatch(t, []string{"retinol", "glycolic_acid"}, stepKeys(res.Routine.PM))
	assert.Empty(t, res.Routine.AM)
}

func TestBuildCompleteness(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())
	g := s.graph

	in := items("cleanser", "vitamin_c", "retinol", "niacinamide", "benzoyl_peroxide", "salicylic_acid", "glycolic_acid", "unicorn tears")
	res, err := s.Build(in, nil)
	require.NoError(t, err)

	require.Len(t, res.Unknown, 1)
	assert.Equal(t, "unicorn tears", res.Unknown[0].Input)

	count := map[string]map[models.Slot]int{}
	for _, slot := range []models.Slot{models.SlotAM, models.SlotPM} {
		for _, step := range res.Routine.Steps(slot) {
			for _, id := range step.Ingredients {
				if count[id] == nil {
					count[id] = map[models.Slot]int{}
				}
				count[id][slot]++
			}
		}
	}

	for _, it := range in[:len(in)-1] {
		ing, err := g.Lookup(it.Name)
		require.NoError(t, err)
		c := count[ing.ID]
		switch ing.TimeOfDay {
		case models.Both:
			assert.Equal(t, 1, c[models.SlotAM], ing.ID)
			assert.Equal(t, 1, c[models.SlotPM], ing.ID)
		case models.MorningOnly:
			assert.Equal(t, map[models.Slot]int{models.SlotAM: 1}, c, ing.ID)
		case models.EveningOnly:
			assert.Equal(t, map[models.Slot]int{models.SlotPM: 1}, c, ing.ID)
		case models.Either:
			assert.Equal(t, 1, c[models.SlotAM]+c[models.SlotPM], ing.ID)
		}
	}
}

func TestBuildOrderOverride(t *testing.T) {
	buffer := models.InteractionEdge{
		A: "moisturizer", B: "retinol", Kind: models.KindCaution,
		Explanation: "buffering lowers irritation", ApplyFirst: "moisturizer", Severity: 2,
	}
	s := newTestSequencer(t, DefaultConfig(), buffer)

	res, err := s.Build(items("retinol", "moisturizer", "niacinamide"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"niacinamide", "moisturizer", "retinol"}, stepKeys(res.Routine.PM))
	assert.Empty(t, notesOf(res, models.NoteOrderCycle))
}

func TestBuildOrderCycle(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig(),
		models.InteractionEdge{A: "cleanser", B: "moisturizer", Kind: models.KindCaution, Explanation: "x", ApplyFirst: "moisturizer", Severity: 2},
		models.InteractionEdge{A: "cleanser", B: "moisturizer", Kind: models.KindSynergy, Explanation: "y", ApplyFirst: "cleanser", Severity: 2},
	)

	res, err := s.Build(items("moisturizer", "cleanser"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cleanser", "moisturizer"}, stepKeys(res.Routine.AM))
	assert.Equal(t, []string{"cleanser", "moisturizer"}, stepKeys(res.Routine.PM))
	assert.Len(t, notesOf(res, models.NoteOrderCycle), 2)
}

func TestBuildEmpty(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.Routine.Len())
	assert.NotNil(t, res.Routine.AM)

	res, err = s.Build(items("unicorn tears", "dragon scale"), nil)
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Len(t, res.Unknown, 2)
}

func TestBuildNotes(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(items("vitamin_c", "niacinamide"), nil)
	require.NoError(t, err)

	assert.Len(t, notesOf(res, models.NoteCaution), 1)
	wait := notesOf(res, models.NoteWait)
	require.Len(t, wait, 1)
	assert.Contains(t, wait[0].Message, "10 minutes")

	missing := notesOf(res, models.NoteMissingEssential)
	require.Len(t, missing, 1)
	assert.Equal(t, models.SlotAM, missing[0].Slot)
}

func TestBuildProducts(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build([]Item{
		{Name: "Brightening Serum", Ingredients: []string{"ascorbic acid", "niacinamide"}},
		{Name: "sunscreen"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, res.Routine.AM, 2)
	serum := res.Routine.AM[0]
	assert.Equal(t, "Brightening Serum", serum.Name)
	assert.Equal(t, []string{"niacinamide", "vitamin_c"}, serum.Ingredients)
	assert.Equal(t, models.CategoryNiacinamide, serum.Category)
	assert.Empty(t, res.Routine.PM)

	// same product, no wait possible
	assert.Empty(t, notesOf(res, models.NoteWait))
	assert.Len(t, notesOf(res, models.NoteCaution), 1)
}

func TestBuildProductWithInternalConflict(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build([]Item{{Name: "Bad Mix", Ingredients: []string{"retinol", "vitamin_c"}}}, nil)
	require.NoError(t, err)

	assert.Len(t, notesOf(res, models.NoteUnplaceable), 1)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "Bad Mix", res.Unresolved[0].ItemA)
	assert.Equal(t, "Bad Mix", res.Unresolved[0].ItemB)
	assert.Equal(t, 1, res.Routine.Len())
}

func TestBuildMergesDuplicateItems(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	res, err := s.Build(items("vitamin_c", "Vitamin C", "ascorbic acid"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"vitamin_c"}, stepKeys(res.Routine.AM))
}

func TestBuildFlexibleSlotConfig(t *testing.T) {
	s := newTestSequencer(t, Config{FlexibleSlot: models.SlotPM})

	res, err := s.Build(items("salicylic_acid"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"salicylic_acid"}, stepKeys(res.Routine.PM))
	assert.Empty(t, res.Routine.AM)
}

func TestBuildProfileNotes(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())
	profile := &models.SkinProfile{SkinType: models.SkinSensitive, Avoid: []string{"retinol"}}

	res, err := s.Build(items("retinol", "moisturizer"), profile)
	require.NoError(t, err)

	caution := notesOf(res, models.NoteSkinTypeCaution)
	require.Len(t, caution, 1)
	assert.Contains(t, caution[0].Message, "start twice a week")
	assert.Len(t, notesOf(res, models.NoteAvoidListed), 1)
}

func TestBuildTooManyItems(t *testing.T) {
	s := newTestSequencer(t, Config{MaxItems: 2})

	_, err := s.Build(items("cleanser", "moisturizer", "spf"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyItems))
}

func TestBuildDeterministic(t *testing.T) {
	s := newTestSequencer(t, DefaultConfig())

	a, err := s.Build(items("retinol", "benzoyl_peroxide", "vitamin_c", "niacinamide", "spf", "cleanser"), nil)
	require.NoError(t, err)
	b, err := s.Build(items("cleanser", "spf", "niacinamide", "vitamin_c", "benzoyl_peroxide", "retinol"), nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
