// Package cli provides the command-line interface for mixmyroutine.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/raphaelgruber/mixmyroutine/internal/config"
	"github.com/raphaelgruber/mixmyroutine/internal/dataset"
	"github.com/raphaelgruber/mixmyroutine/internal/knowledge"
	"github.com/raphaelgruber/mixmyroutine/internal/metrics"
	"github.com/raphaelgruber/mixmyroutine/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	jsonOut bool

	// Set up in PersistentPreRunE
	cfg       config.Config
	logger    *slog.Logger
	closeLog  func() error
	source    dataset.Source
	advisor   *service.Advisor
	collector *metrics.Collector
	out       printer
)

// skipKnowledge names commands that run without a loaded snapshot.
var skipKnowledge = map[string]bool{"help": true, "completion": true, "validate": true}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mixmyroutine",
	Short: "Skincare ingredient compatibility and routine advisor",
	Long: `mixmyroutine reasons about skincare ingredients: which ones conflict,
how to split them into a morning and evening routine, and what to try for a
skin profile based on similar past cases.

Ingredient rules and cases come from the built-in data set unless
MIXMY_RULES_FILE / MIXMY_CASES_FILE point at YAML files.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		stderrLevel := slog.LevelWarn
		if verbose {
			stderrLevel = slog.LevelDebug
		}
		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel, stderrLevel)
		out = printer{w: os.Stdout, theme: themeFor(os.Stdout), json: jsonOut}
		source = dataset.Source{RulesPath: cfg.RulesFile, CasesPath: cfg.CasesFile}
		collector = metrics.NewCollector()

		if skipKnowledge[cmd.Name()] {
			return nil
		}
		return loadKnowledge(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && !jsonOut && collector != nil {
			fmt.Fprintln(os.Stderr)
			printMetrics(printer{w: os.Stderr, theme: themeFor(os.Stderr)}, collector.Snapshot())
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// loadKnowledge builds the first snapshot and the advisor serving it.
func loadKnowledge(ctx context.Context) error {
	start := time.Now()
	snap, err := knowledge.Build(ctx, source, cfg.Knowledge())
	if err != nil {
		return fmt.Errorf("load knowledge: %w", err)
	}
	collector.RecordTiming(metrics.OpSnapshotLoad, time.Since(start))

	advisor = service.NewAdvisor(knowledge.NewHolder(snap, logger), service.Options{
		SuggestionLimit: suggestionLimit(cfg.SuggestionLimit),
		Metrics:         collector,
		Logger:          logger,
	})
	logger.Debug("knowledge loaded",
		"ingredients", snap.Graph.Len(),
		"interactions", snap.Graph.EdgeCount(),
		"cases", snap.Cases.Len(),
	)
	return nil
}

// suggestionLimit maps the configured 0 ("no suggestions") onto the
// advisor's negative sentinel; the advisor reads 0 as "use the default".
func suggestionLimit(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output and timing statistics")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	// Add subcommands
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(routineCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(fallbackCmd)
	rootCmd.AddCommand(ingredientsCmd)
	rootCmd.AddCommand(dataCmd)
}
