package fixer

import (
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	tt "github.com/gnolang/keyfold/internal/types"
)

type Fixer struct {
	DryRun bool
	// Out receives the diffs printed in dry-run mode.
	Out io.Writer
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = os.Stdout
	}
	return &Fixer{
		DryRun: dryRun,
		Out:    out,
	}
}

// Apply writes the migrated output of res back to its file, or prints a
// unified diff when DryRun is set. It reports whether the file changed.
func (f *Fixer) Apply(res *tt.Result) (bool, error) {
	if res == nil || !res.Changed() {
		return false, nil
	}

	if f.DryRun {
		diff, err := Diff(res)
		if err != nil {
			return false, err
		}
		if _, err := io.WriteString(f.Out, diff); err != nil {
			return false, fmt.Errorf("failed to write diff: %w", err)
		}
		return true, nil
	}

	info, err := os.Stat(res.Filename)
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	if err := os.WriteFile(res.Filename, res.Output, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write file: %w", err)
	}
	return true, nil
}

// Diff renders the change in res as a unified diff.
func Diff(res *tt.Result) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(res.Original)),
		B:        difflib.SplitLines(string(res.Output)),
		FromFile: "a/" + res.Filename,
		ToFile:   "b/" + res.Filename,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", res.Filename, err)
	}
	return text, nil
}
