package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnolang/keyfold/internal"
	"github.com/gnolang/keyfold/internal/fixer"
	tt "github.com/gnolang/keyfold/internal/types"
)

var watchDryRun bool

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Migrate files as they are saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, engine, err := loadEngine()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := internal.NewWatcher(engine, fixer.New(watchDryRun, out), args, cfg.Ignore, logger)
		w.OnResult = func(res *tt.Result) {
			printIssues(out, []*tt.Result{res})
			if res.Rewritten > 0 {
				fmt.Fprintf(out, "%s: %d call sites migrated\n", res.Filename, res.Rewritten)
			}
		}

		fmt.Fprintf(out, "Watching %v (press Ctrl+C to stop)\n", args)
		return w.Start(ctx)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Print diffs instead of writing files")
}
