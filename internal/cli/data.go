package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/raphaelgruber/mixmyroutine/internal/dataset"
	"github.com/raphaelgruber/mixmyroutine/internal/knowledge"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Inspect and watch the ingredient data set",
	Long: `Validate the rule and case files, or watch them and reload on change.

By default the built-in data set is used. Point MIXMY_RULES_FILE and
MIXMY_CASES_FILE at YAML files to use your own.`,
}

var dataValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rule and case files",
	Long: `Load and validate every record. All problems are reported at once and
nothing is kept when any record is bad.

Examples:
  mixmyroutine data validate
  MIXMY_RULES_FILE=rules.yaml mixmyroutine data validate`,
	Args: cobra.NoArgs,
	RunE: runDataValidate,
}

var dataWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the data files whenever they change",
	Long: `Watch the configured data files and rebuild the knowledge base after
each change. A change that fails validation is logged and the previous
data stays active. Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runDataWatch,
}

func init() {
	dataWatchCmd.Flags().DurationVar(&watchDebounce, "debounce", dataset.DefaultDebounce, "wait this long after the last change before reloading")

	dataCmd.AddCommand(dataValidateCmd)
	dataCmd.AddCommand(dataWatchCmd)
}

// dataSummary is the result of a successful validation.
type dataSummary struct {
	Rules       string `json:"rules"`
	Cases       string `json:"cases"`
	Ingredients int    `json:"ingredients"`
	Conflicts   int    `json:"conflicts"`
	Cautions    int    `json:"cautions"`
	Synergies   int    `json:"synergies"`
	CaseCount   int    `json:"cases_loaded"`
	Concerns    int    `json:"concerns"`
}

func summarize(snap *knowledge.Snapshot) dataSummary {
	st := snap.Rules.Stats()
	return dataSummary{
		Rules:       orEmbedded(source.RulesPath),
		Cases:       orEmbedded(source.CasesPath),
		Ingredients: st.Ingredients,
		Conflicts:   st.Conflicts,
		Cautions:    st.Cautions,
		Synergies:   st.Synergies,
		CaseCount:   snap.Cases.Len(),
		Concerns:    len(snap.Fallback.Table()),
	}
}

func orEmbedded(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}

func runDataValidate(cmd *cobra.Command, args []string) error {
	snap, err := knowledge.Build(cmd.Context(), source, cfg.Knowledge())
	if err != nil {
		return err
	}
	sum := summarize(snap)
	if out.json {
		return out.encode(sum)
	}

	out.printf("%s\n", out.theme.goodStyle().Render("Data set is valid"))
	out.printf("  Rules file:   %s\n", sum.Rules)
	out.printf("  Cases file:   %s\n", sum.Cases)
	out.printf("  Ingredients:  %d\n", sum.Ingredients)
	out.printf("  Interactions: %d conflicts, %d cautions, %d synergies\n", sum.Conflicts, sum.Cautions, sum.Synergies)
	out.printf("  Cases:        %d\n", sum.CaseCount)
	out.printf("  Concerns:     %d\n", sum.Concerns)
	return nil
}

func runDataWatch(cmd *cobra.Command, args []string) error {
	paths := source.Paths()
	if len(paths) == 0 {
		return fmt.Errorf("nothing to watch: set MIXMY_RULES_FILE or MIXMY_CASES_FILE")
	}

	w, err := dataset.NewWatcher(paths, func(ctx context.Context) error {
		snap, err := advisor.Reload(ctx, source, cfg.Knowledge())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", out.theme.badStyle().Render("Reload rejected:"), err)
			return err
		}
		sum := summarize(snap)
		out.printf("%s version %d: %d ingredients, %d interactions, %d cases\n",
			out.theme.goodStyle().Render("Reloaded"), snap.Version,
			sum.Ingredients, sum.Conflicts+sum.Cautions+sum.Synergies, sum.CaseCount)
		return nil
	}, logger)
	if err != nil {
		return err
	}
	w.SetDebounce(watchDebounce)

	out.printf("Watching %d file(s), version %d active. Press Ctrl-C to stop.\n", len(paths), advisor.Snapshot().Version)
	return w.Run(cmd.Context())
}
