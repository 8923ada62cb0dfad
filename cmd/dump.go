package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/keyfold/internal/syntax"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print the syntax tree of a file as an S-expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpFile(args[0], cmd.OutOrStdout())
	},
}

func dumpFile(path string, out io.Writer) error {
	lang, err := syntax.LanguageForFile(path)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	tree, err := syntax.DumpTree(lang, source)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tree)
	return err
}
