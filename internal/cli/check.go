package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/parser"
	"github.com/spf13/cobra"
)

var (
	checkText  string
	checkLabel string
	checkFile  string
)

var checkCmd = &cobra.Command{
	Use:   "check [ingredients...]",
	Short: "Check whether ingredients can be used together",
	Long: `Classify every pair among the given ingredients as conflict, caution or
synergy. Ingredients can be given as arguments, found in free text, or read
from a product's ingredient list (label).

Examples:
  mixmyroutine check retinol "vitamin c" niacinamide
  mixmyroutine check --text "I use a retinol serum and a vitamin C cream"
  mixmyroutine check --label "Ingredients: Aqua, Niacinamide (5%), Sodium Hyaluronate"
  mixmyroutine check --file label.txt`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkText, "text", "t", "", "find ingredients mentioned in free text")
	checkCmd.Flags().StringVarP(&checkLabel, "label", "l", "", "comma-separated ingredient list as printed on a label")
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "read a label ingredient list from a file")
	checkCmd.MarkFlagsMutuallyExclusive("text", "label", "file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkText != "" {
		report, mentions, err := advisor.CheckText(checkText)
		if err != nil {
			return err
		}
		if out.json {
			return out.encode(map[string]any{"mentions": mentions, "report": report})
		}
		if len(mentions) == 0 {
			out.printf("No ingredients found in text.\n")
			return nil
		}
		found := make([]string, len(mentions))
		for i, m := range mentions {
			found[i] = fmt.Sprintf("%s (%q)", m.ID, m.Matched)
		}
		out.hint("Found: " + strings.Join(found, ", "))
		out.report(report)
		return nil
	}

	names := args
	switch {
	case checkLabel != "":
		names = append(parser.ParseIngredientList(checkLabel), args...)
	case checkFile != "":
		content, err := os.ReadFile(checkFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		names = append(parser.ParseIngredientList(string(content)), args...)
	}
	if len(names) == 0 {
		return fmt.Errorf("no ingredients given (pass names, --text, --label or --file)")
	}

	report, err := advisor.CheckCompatibility(names)
	if err != nil {
		return err
	}
	if out.json {
		return out.encode(report)
	}
	out.report(report)
	return nil
}
