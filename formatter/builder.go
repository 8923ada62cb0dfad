package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/keyfold/internal"
	"github.com/gnolang/keyfold/internal/transform"
	tt "github.com/gnolang/keyfold/internal/types"
)

const (
	tabWidth = 8
	// maxSnippetLines caps how much of a multi-line call is printed.
	maxSnippetLines = 6
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgHiBlue, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
	summaryStyle = color.New(color.FgWhite, color.Bold)
)

// issueFormatter supplies the text/template one issue is rendered with.
// The template is executed against an *issueView.
type issueFormatter interface {
	IssueTemplate() string
}

func formatterFor(rule string) issueFormatter {
	switch rule {
	case transform.RuleManualReview:
		return &ManualReviewFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue renders the issues of one file against its source.
func GenerateFormattedIssue(issues []tt.Issue, source *internal.SourceCode) string {
	var b strings.Builder
	for _, issue := range issues {
		b.WriteString(renderIssue(issue, source, formatterFor(issue.Rule)))
	}
	return b.String()
}

func renderIssue(issue tt.Issue, source *internal.SourceCode, f issueFormatter) string {
	tmpl, err := template.New(issue.Rule).Parse(f.IssueTemplate())
	if err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newIssueView(issue, source)); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// issueView holds the lines an issue points at, ready for display.
type issueView struct {
	issue tt.Issue
	// lines are the source lines shown, without their shared indentation.
	lines  []string
	indent string
	first  int
	// gutter is the width of the line-number column.
	gutter int
}

func newIssueView(issue tt.Issue, source *internal.SourceCode) *issueView {
	first, last := issue.Start.Line, issue.End.Line
	if last < first {
		last = first
	}
	if last-first >= maxSnippetLines {
		last = first + maxSnippetLines - 1
	}

	v := &issueView{issue: issue, first: first, gutter: len(strconv.Itoa(last))}
	if source == nil || first < 1 || last > len(source.Lines) {
		return v
	}

	shown := source.Lines[first-1 : last]
	v.indent = sharedIndent(shown)
	for _, line := range shown {
		v.lines = append(v.lines, strings.TrimPrefix(line, v.indent))
	}
	return v
}

func (v *issueView) Header() string {
	var label string
	switch v.issue.Severity {
	case tt.SeverityError:
		label = errorStyle.Sprint("error: ")
	case tt.SeverityWarning:
		label = warningStyle.Sprint("warning: ")
	default:
		label = infoStyle.Sprint("info: ")
	}
	return label + ruleStyle.Sprint(v.issue.Rule) + "\n" +
		lineStyle.Sprintf("%*s--> ", v.gutter, "") +
		fileStyle.Sprintf("%s:%d:%d", v.issue.Filename, v.issue.Start.Line, v.issue.Start.Column)
}

func (v *issueView) Snippet() string {
	var b strings.Builder
	b.WriteString(v.margin("|"))
	for i, line := range v.lines {
		b.WriteString("\n")
		b.WriteString(lineStyle.Sprintf("%*d | ", v.gutter, v.first+i))
		b.WriteString(expandTabs(line))
	}
	return b.String()
}

// Underline marks the call on its first line. A call spanning several
// lines is marked up to the end of that line.
func (v *issueView) Underline() string {
	if len(v.lines) == 0 {
		return v.margin("|")
	}

	line := v.lines[0]
	start := displayWidth(line, v.issue.Start.Column-1-len(v.indent))
	end := displayWidth(line, len(line))
	if v.issue.End.Line == v.issue.Start.Line {
		end = displayWidth(line, v.issue.End.Column-1-len(v.indent))
	}

	return v.margin("|") + " " + strings.Repeat(" ", start) +
		messageStyle.Sprint(strings.Repeat("~", max(end-start, 1)))
}

func (v *issueView) Message() string {
	return v.margin("= ") + messageStyle.Sprint(v.issue.Message)
}

func (v *issueView) Note() string {
	if v.issue.Note == "" {
		return ""
	}
	return v.margin("= ") + noteStyle.Sprint("note: ") + v.issue.Note
}

// margin right-aligns mark past the line-number column.
func (v *issueView) margin(mark string) string {
	return lineStyle.Sprintf("%*s%s", v.gutter+1, "", mark)
}

// displayWidth returns the columns taken by the first n bytes of line once
// tabs are expanded.
func displayWidth(line string, n int) int {
	n = min(max(n, 0), len(line))
	width := 0
	for _, ch := range line[:n] {
		if ch == '\t' {
			width += tabWidth - width%tabWidth
			continue
		}
		width++
	}
	return width
}

func expandTabs(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var b strings.Builder
	col := 0
	for _, ch := range line {
		if ch != '\t' {
			b.WriteRune(ch)
			col++
			continue
		}
		n := tabWidth - col%tabWidth
		b.WriteString(strings.Repeat(" ", n))
		col += n
	}
	return b.String()
}

// sharedIndent returns the leading whitespace common to every non-blank line.
func sharedIndent(lines []string) string {
	indent, seen := "", false
	for _, line := range lines {
		body := strings.TrimLeft(line, " \t")
		if body == "" {
			continue
		}
		lead := line[:len(line)-len(body)]
		if !seen {
			indent, seen = lead, true
			continue
		}
		for !strings.HasPrefix(lead, indent) {
			indent = indent[:len(indent)-1]
		}
	}
	return indent
}
