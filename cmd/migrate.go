package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/keyfold/codemod"
	"github.com/gnolang/keyfold/formatter"
	"github.com/gnolang/keyfold/internal"
	"github.com/gnolang/keyfold/internal/fixer"
	tt "github.com/gnolang/keyfold/internal/types"
)

var (
	dryRun        bool
	jobs          int
	useCache      bool
	cacheDir      string
	showProgress  bool
	stdinFilename string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [paths...]",
	Short: "Rewrite legacy call sites in place",
	Long: `Rewrites every legacy call site found under the given files or directories.
Pass "-" to read a single file from stdin and print the result to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cfg, engine, err := loadEngine()
		if err != nil {
			return err
		}

		if len(args) == 1 && args[0] == "-" {
			return runStdin(engine, stdinFilename, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		}

		if useCache {
			cache, err := internal.NewCache(cacheDir)
			if err != nil {
				return err
			}
			engine.SetCache(cache)
			defer func() {
				if err := cache.Save(); err != nil {
					logger.Warn("Failed to save cache", zap.Error(err))
				}
			}()
		}

		opts := processingOptions(cfg)
		fx := fixer.New(dryRun, cmd.OutOrStdout())
		_, err = runMigrate(ctx, logger, engine, args, opts, fx, cmd.OutOrStdout())
		return err
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print a unified diff instead of writing files")
	migrateCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Files processed at once (0 uses every CPU)")
	migrateCmd.Flags().BoolVar(&useCache, "cache", true, "Reuse results for files that did not change since the last run")
	migrateCmd.Flags().StringVar(&cacheDir, "cache-dir", ".keyfold", "Directory holding the result cache")
	migrateCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
	migrateCmd.Flags().StringVar(&stdinFilename, "stdin-filename", "stdin.tsx", "File name used to pick the grammar when reading stdin")
}

func processingOptions(cfg codemod.Config) codemod.Options {
	opts := codemod.OptionsFrom(cfg)
	opts.Jobs = jobs
	if showProgress {
		opts.Progress = os.Stderr
	}
	return opts
}

func runMigrate(
	ctx context.Context,
	logger *zap.Logger,
	engine codemod.Engine,
	paths []string,
	opts codemod.Options,
	fx *fixer.Fixer,
	out io.Writer,
) ([]*tt.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results, err := codemod.ProcessFiles(ctx, logger, engine, paths, opts, codemod.ProcessFile)
	if err != nil {
		return results, fmt.Errorf("error processing files: %w", err)
	}

	for _, res := range results {
		changed, err := fx.Apply(res)
		if err != nil {
			logger.Error("Error applying migration", zap.String("file", res.Filename), zap.Error(err))
			continue
		}
		if changed {
			logger.Debug("Migrated file", zap.String("file", res.Filename), zap.Int("rewritten", res.Rewritten))
		}
	}

	printIssues(out, results)
	fmt.Fprint(out, formatter.FormatSummary(results, fx.DryRun))
	return results, nil
}

func runStdin(engine codemod.Engine, filename string, in io.Reader, out, errOut io.Writer) error {
	source, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("error reading stdin: %w", err)
	}

	res, err := codemod.ProcessSource(engine, filename, source)
	if err != nil {
		return err
	}

	if _, err := out.Write(res.Output); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	printIssues(errOut, []*tt.Result{res})
	return nil
}

// printIssues renders the diagnostics of every result against the source
// it was computed from.
func printIssues(out io.Writer, results []*tt.Result) {
	for _, res := range results {
		if len(res.Issues) == 0 {
			continue
		}
		sourceCode := internal.NewSourceCode(res.Original)
		fmt.Fprint(out, formatter.GenerateFormattedIssue(res.Issues, sourceCode))
	}
}
