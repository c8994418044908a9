package cli

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/parser"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
	"github.com/spf13/cobra"
)

var (
	routineFile    string
	routineProfile profileFlags
)

var routineCmd = &cobra.Command{
	Use:   "routine [ingredients...]",
	Short: "Split ingredients into an ordered AM and PM routine",
	Long: `Place each ingredient or product into the morning or evening routine,
separate conflicting actives where possible and order the steps.

Products are read from a Markdown note with --file: each list item is a
product, "Name: a, b, c" lists its ingredients. Optional YAML frontmatter
holds the skin profile; profile flags override it.

Examples:
  mixmyroutine routine cleanser retinol "vitamin c" moisturizer spf
  mixmyroutine routine --file my-routine.md
  mixmyroutine routine retinol glycolic_acid -s sensitive --sensitivity 4`,
	RunE: runRoutine,
}

func init() {
	routineCmd.Flags().StringVarP(&routineFile, "file", "f", "", "read products from a Markdown routine note")
	routineProfile.register(routineCmd)
}

func runRoutine(cmd *cobra.Command, args []string) error {
	var (
		items   []routine.Item
		profile *models.SkinProfile
	)

	if routineFile != "" {
		content, err := os.ReadFile(routineFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		doc, err := parser.ParseRoutineDoc(string(content))
		if err != nil {
			return fmt.Errorf("parse %s: %w", routineFile, err)
		}
		items = doc.Items
		profile = doc.Profile
		if doc.Title != "" && !out.json {
			out.heading(doc.Title)
			out.printf("\n")
		}
	}
	for _, a := range args {
		items = append(items, routine.Item{Name: a})
	}
	if len(items) == 0 {
		return fmt.Errorf("no ingredients given (pass names or --file)")
	}
	if routineProfile.set(cmd) {
		p := routineProfile.profile()
		profile = &p
	}

	res, err := advisor.BuildRoutine(items, profile)
	if err != nil {
		return err
	}
	if out.json {
		return out.encode(res)
	}
	out.routine(res)
	return nil
}
