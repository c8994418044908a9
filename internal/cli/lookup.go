package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <ingredient>",
	Short: "Show an ingredient and its interactions",
	Long: `Look up an ingredient by name or alias and list every interaction it
takes part in. Unknown names print close matches.

Examples:
  mixmyroutine lookup retinol
  mixmyroutine lookup "vitamin c"
  mixmyroutine lookup ha --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	info, err := advisor.Lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if out.json {
		return out.encode(info)
	}
	out.ingredient(info)
	return nil
}
