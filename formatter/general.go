package formatter

// GeneralIssueFormatter renders a call site with the code it points at.
type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{.Header}}
{{.Snippet}}
{{.Underline}}
{{.Message}}
{{with .Note}}{{.}}
{{end}}
`
}

// ManualReviewFormatter is used when the migration gave up on a call for a
// reason other than its key. The snippet is shown without an underline.
type ManualReviewFormatter struct{}

func (f *ManualReviewFormatter) IssueTemplate() string {
	return `{{.Header}}
{{.Snippet}}
{{.Message}}

`
}
