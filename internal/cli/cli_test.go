package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/raphaelgruber/mixmyroutine/internal/dataset"
	"github.com/raphaelgruber/mixmyroutine/internal/knowledge"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
	"github.com/raphaelgruber/mixmyroutine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAdvisor(t *testing.T) *service.Advisor {
	t.Helper()
	snap, err := knowledge.Build(context.Background(), dataset.Embedded(), knowledge.DefaultConfig())
	require.NoError(t, err)
	return service.NewAdvisor(knowledge.NewHolder(snap, nil), service.Options{})
}

func plainPrinter(buf *bytes.Buffer) printer {
	t := defaultTheme
	t.plain = true
	return printer{w: buf, theme: t}
}

func TestEnumKey(t *testing.T) {
	tests := map[string]string{
		"acne":          "acne",
		"Dark circles":  "dark_circles",
		"dark-circles":  "dark_circles",
		" dark_circles": "dark_circles",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, enumKey(in), in)
	}
}

func TestProfileFlags(t *testing.T) {
	f := profileFlags{
		skinType:    "Oily",
		concerns:    []string{"acne", "Dark circles"},
		sensitivity: 2,
		avoid:       []string{"retinol"},
	}
	p := f.profile()
	assert.Equal(t, models.SkinOily, p.SkinType)
	assert.Equal(t, []models.Concern{models.ConcernAcne, models.ConcernDarkCircles}, p.Concerns)
	assert.Equal(t, 2, p.Sensitivity)
	assert.Equal(t, []string{"retinol"}, p.Avoid)
}

func TestPrintReport(t *testing.T) {
	a := testAdvisor(t)

	report, err := a.CheckCompatibility([]string{"retinol", "vitamin c", "retnol x"})
	require.NoError(t, err)

	var buf bytes.Buffer
	plainPrinter(&buf).report(report)
	text := buf.String()

	assert.Contains(t, text, "Conflicting:")
	assert.Contains(t, text, "Conflicts")
	assert.Contains(t, text, "Not recognized")
	assert.Contains(t, text, `"retnol x"`)
	assert.NotContains(t, text, "\x1b[", "plain theme must not emit escape codes")
}

func TestPrintRoutine(t *testing.T) {
	a := testAdvisor(t)

	res, err := a.BuildRoutine([]routine.Item{
		{Name: "gentle_cleanser"}, {Name: "vitamin_c"}, {Name: "moisturizer"}, {Name: "spf"},
	}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	plainPrinter(&buf).routine(res)
	text := buf.String()

	assert.Contains(t, text, "Morning (AM)")
	assert.Contains(t, text, "Evening (PM)")
	assert.Contains(t, text, "1. Gentle Cleanser")
	assert.Contains(t, text, "4. Sunscreen (SPF)")
}

func TestPrintRoutineEmpty(t *testing.T) {
	var buf bytes.Buffer
	plainPrinter(&buf).routine(routine.Result{Empty: true})
	assert.Equal(t, "Nothing to schedule.\n", buf.String())
}

func TestPrintAdvice(t *testing.T) {
	a := testAdvisor(t)

	advice, err := a.Recommend(models.SkinProfile{
		SkinType:    models.SkinOily,
		Concerns:    []models.Concern{models.ConcernAcne},
		Sensitivity: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, advice.Ingredients)

	var buf bytes.Buffer
	plainPrinter(&buf).advice(advice)
	assert.Contains(t, buf.String(), "1. "+advice.Ingredients[0].Name)
}

func TestPrintIngredient(t *testing.T) {
	a := testAdvisor(t)

	info, err := a.Lookup("retinol")
	require.NoError(t, err)

	var buf bytes.Buffer
	plainPrinter(&buf).ingredient(info)
	text := buf.String()

	assert.Contains(t, text, "ID:          retinol")
	assert.Contains(t, text, "Interactions")
	assert.Contains(t, text, "vitamin_c")
}

func TestPrinterEncode(t *testing.T) {
	var buf bytes.Buffer
	p := printer{w: &buf, json: true}
	require.NoError(t, p.encode(map[string]int{"count": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got["count"])
}
