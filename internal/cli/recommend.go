package cli

import (
	"github.com/spf13/cobra"
)

var (
	recommendProfile profileFlags
	fallbackProfile  profileFlags
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend ingredients for a skin profile",
	Long: `Recommend a conflict-free ingredient set for a skin profile, adapted from
the most similar stored cases. When no case is similar enough the concern
table is used instead.

Examples:
  mixmyroutine recommend -s oily -c acne,pores --sensitivity 2
  mixmyroutine recommend -s dry -c aging --avoid retinol --json`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

var fallbackCmd = &cobra.Command{
	Use:   "fallback",
	Short: "Rank ingredient categories for skin concerns",
	Long: `Rank the ingredient categories known to address the given concerns,
without consulting stored cases. No concerns lists the basics.

Examples:
  mixmyroutine fallback -c acne,hyperpigmentation
  mixmyroutine fallback`,
	Args: cobra.NoArgs,
	RunE: runFallback,
}

func init() {
	recommendProfile.register(recommendCmd)
	_ = recommendCmd.MarkFlagRequired("skin-type")

	fallbackCmd.Flags().StringSliceVarP(&fallbackProfile.concerns, "concerns", "c", nil, "skin concerns, e.g. acne,redness")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	advice, err := advisor.Recommend(recommendProfile.profile())
	if err != nil {
		return err
	}
	if out.json {
		return out.encode(advice)
	}
	out.advice(advice)
	return nil
}

func runFallback(cmd *cobra.Command, args []string) error {
	ranked, err := advisor.Fallback(fallbackProfile.profile().Concerns)
	if err != nil {
		return err
	}
	if out.json {
		return out.encode(ranked)
	}
	out.heading("Categories by concern coverage")
	out.categories(ranked)
	return nil
}
