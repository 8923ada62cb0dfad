package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/keyfold/codemod"
	"github.com/gnolang/keyfold/formatter"
	tt "github.com/gnolang/keyfold/internal/types"
)

var errPendingMigrations = errors.New("legacy call sites remain")

var (
	checkJsonOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report legacy call sites without rewriting them",
	Long: `Reports the call sites a migration would rewrite and the ones that need
manual migration. Exits with status 1 when any are found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cfg, engine, err := loadEngine()
		if err != nil {
			return err
		}

		return runCheck(ctx, logger, engine, args, processingOptions(cfg), cmd.OutOrStdout(), checkJsonOutput, outPath)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output results in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Files processed at once (0 uses every CPU)")
}

func runCheck(
	ctx context.Context,
	logger *zap.Logger,
	engine codemod.Engine,
	paths []string,
	opts codemod.Options,
	out io.Writer,
	isJson bool,
	jsonOutput string,
) error {
	results, err := codemod.ProcessFiles(ctx, logger, engine, paths, opts, codemod.ProcessFile)
	if err != nil {
		return fmt.Errorf("error processing files: %w", err)
	}

	if isJson {
		if err := writeJSONReport(out, results, jsonOutput); err != nil {
			return err
		}
	} else {
		printIssues(out, results)
		fmt.Fprint(out, formatter.FormatSummary(results, true))
	}

	if hasPendingMigrations(results) {
		return errPendingMigrations
	}
	return nil
}

func writeJSONReport(out io.Writer, results []*tt.Result, jsonOutput string) error {
	if jsonOutput == "" {
		return formatter.WriteJSON(out, results)
	}

	f, err := os.Create(jsonOutput)
	if err != nil {
		return fmt.Errorf("error creating JSON output file: %w", err)
	}
	defer f.Close()
	return formatter.WriteJSON(f, results)
}

func hasPendingMigrations(results []*tt.Result) bool {
	for _, res := range results {
		if res.Changed() || len(res.Issues) > 0 {
			return true
		}
	}
	return false
}
