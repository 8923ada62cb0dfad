package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/keyfold/codemod"
	"github.com/gnolang/keyfold/internal"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "keyfold [paths...]",
	Short:            "keyfold - migrate positional query keys to the single options object",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			_ = cmd.Help()
			return nil
		}
		// Format: keyfold [path1 path2 ...] => behaves like the migrate subcommand
		return migrateCmd.RunE(migrateCmd, args)
	},
}

// Execute runs the command tree. Any returned error should make the
// process exit with a non-zero status.
func Execute() error {
	defer func() { _ = logger.Sync() }()

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errPendingMigrations) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", codemod.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Abort the run after this long")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every call site decision")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dumpCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("error building logger: %w", err)
	}
	return l, nil
}

// loadEngine reads the configuration at cfgFile and builds an engine from it.
func loadEngine() (codemod.Config, *internal.Engine, error) {
	cfg, err := codemod.LoadConfig(cfgFile)
	if err != nil {
		return codemod.Config{}, nil, err
	}
	engine, err := codemod.New(cfg, logger)
	if err != nil {
		return codemod.Config{}, nil, err
	}
	return cfg, engine, nil
}
