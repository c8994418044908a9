package cli

import (
	"fmt"

	"github.com/raphaelgruber/mixmyroutine/internal/dataset"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	curateProfile profileFlags
	curateOutcome string
	curateNote    string
	curateID      string
	curateAppend  bool
)

var dataCurateCmd = &cobra.Command{
	Use:   "curate <ingredients...>",
	Short: "Record how a routine worked for a skin profile",
	Long: `Add a solved case: a skin profile, the ingredients used and the outcome.
The case is validated against the current data set and printed as a YAML
record. With --append it is also written to the configured cases file.

Examples:
  mixmyroutine data curate -s oily -c acne --sensitivity 2 --outcome successful niacinamide "salicylic acid" spf
  MIXMY_CASES_FILE=cases.yaml mixmyroutine data curate -s dry -c aging --outcome poor retinol --append`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDataCurate,
}

func init() {
	curateProfile.register(dataCurateCmd)
	dataCurateCmd.Flags().StringVarP(&curateOutcome, "outcome", "o", "", "how it went: successful, neutral or poor")
	dataCurateCmd.Flags().StringVarP(&curateNote, "note", "n", "", "free-form note")
	dataCurateCmd.Flags().StringVar(&curateID, "id", "", "case id (default: generated)")
	dataCurateCmd.Flags().BoolVar(&curateAppend, "append", false, "write the case to MIXMY_CASES_FILE")
	_ = dataCurateCmd.MarkFlagRequired("skin-type")
	_ = dataCurateCmd.MarkFlagRequired("outcome")

	dataCmd.AddCommand(dataCurateCmd)
}

func runDataCurate(cmd *cobra.Command, args []string) error {
	if curateAppend && source.CasesPath == "" {
		return fmt.Errorf("--append needs MIXMY_CASES_FILE")
	}

	stored, err := advisor.CurateCase(models.Case{
		ID:          curateID,
		Profile:     curateProfile.profile(),
		Ingredients: args,
		Outcome:     models.Outcome(enumKey(curateOutcome)),
		Note:        curateNote,
	})
	if err != nil {
		return err
	}

	if curateAppend {
		if err := source.AppendCase(cmd.Context(), stored); err != nil {
			return err
		}
		logger.Info("case appended", "case", stored.ID, "file", source.CasesPath)
	}

	if out.json {
		return out.encode(stored)
	}
	rec, err := yaml.Marshal([]dataset.CaseRecord{dataset.CaseRecordFrom(stored)})
	if err != nil {
		return fmt.Errorf("encode case: %w", err)
	}
	out.printf("%s", rec)
	if curateAppend {
		out.hint(fmt.Sprintf("Appended to %s", source.CasesPath))
	}
	return nil
}
