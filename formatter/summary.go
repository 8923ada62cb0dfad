package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	tt "github.com/gnolang/keyfold/internal/types"
)

// Totals aggregates the results of a run.
type Totals struct {
	Files        int `json:"files"`
	ChangedFiles int `json:"changedFiles"`
	Rewritten    int `json:"rewritten"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
}

func Summarize(results []*tt.Result) Totals {
	var t Totals
	for _, res := range results {
		if res == nil {
			continue
		}
		t.Files++
		if res.Changed() {
			t.ChangedFiles++
		}
		t.Rewritten += res.Rewritten
		t.Skipped += res.Skipped
		t.Failed += res.Failed
	}
	return t
}

// FormatSummary renders the closing line of a run. dryRun changes the verb
// from "migrated" to "would migrate".
func FormatSummary(results []*tt.Result, dryRun bool) string {
	t := Summarize(results)

	verb := "migrated"
	if dryRun {
		verb = "would migrate"
	}

	var b strings.Builder
	b.WriteString(summaryStyle.Sprintf("%s %d call %s in %d of %d %s",
		verb, t.Rewritten, plural(t.Rewritten, "site", "sites"),
		t.ChangedFiles, t.Files, plural(t.Files, "file", "files")))
	if t.Skipped > 0 {
		b.WriteString(fmt.Sprintf(", %d already migrated", t.Skipped))
	}
	if t.Failed > 0 {
		b.WriteString(", ")
		b.WriteString(warningStyle.Sprintf("%d need manual migration", t.Failed))
	}
	b.WriteString("\n")
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type jsonReport struct {
	Totals Totals       `json:"totals"`
	Files  []jsonResult `json:"files"`
}

type jsonResult struct {
	Filename  string     `json:"filename"`
	Changed   bool       `json:"changed"`
	Rewritten int        `json:"rewritten"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	Issues    []tt.Issue `json:"issues"`
}

// WriteJSON writes the results as one indented JSON document.
func WriteJSON(w io.Writer, results []*tt.Result) error {
	report := jsonReport{Totals: Summarize(results), Files: []jsonResult{}}
	for _, res := range results {
		if res == nil {
			continue
		}
		issues := res.Issues
		if issues == nil {
			issues = []tt.Issue{}
		}
		report.Files = append(report.Files, jsonResult{
			Filename:  res.Filename,
			Changed:   res.Changed(),
			Rewritten: res.Rewritten,
			Skipped:   res.Skipped,
			Failed:    res.Failed,
			Issues:    issues,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("error encoding JSON output: %w", err)
	}
	return nil
}
