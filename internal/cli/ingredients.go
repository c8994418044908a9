package cli

import (
	"fmt"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/spf13/cobra"
)

var (
	ingredientsConcern  string
	ingredientsCategory string
)

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "List known ingredients",
	Long: `List the ingredients in the knowledge base, optionally filtered by the
concern they address or their category.

Examples:
  mixmyroutine ingredients
  mixmyroutine ingredients --concern acne
  mixmyroutine ingredients --category exfoliant`,
	Args: cobra.NoArgs,
	RunE: runIngredients,
}

func init() {
	ingredientsCmd.Flags().StringVar(&ingredientsConcern, "concern", "", "only ingredients addressing this concern")
	ingredientsCmd.Flags().StringVar(&ingredientsCategory, "category", "", "only ingredients in this category")
}

func runIngredients(cmd *cobra.Command, args []string) error {
	concern := models.Concern(enumKey(ingredientsConcern))
	if concern != "" && !concern.Valid() {
		return fmt.Errorf("unknown concern %q", ingredientsConcern)
	}
	category := models.Category(enumKey(ingredientsCategory))
	if category != "" && !category.Valid() {
		return fmt.Errorf("unknown category %q", ingredientsCategory)
	}

	list := advisor.Ingredients(concern, category)
	if out.json {
		return out.encode(list)
	}
	if len(list) == 0 {
		out.printf("No ingredients found.\n")
		return nil
	}

	out.heading(fmt.Sprintf("Ingredients (%d)", len(list)))
	for _, ing := range list {
		out.printf("  %-22s %-16s %s\n", ing.ID, ing.Category, out.theme.hintStyle().Render(string(ing.TimeOfDay)))
	}
	return nil
}
