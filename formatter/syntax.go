package formatter

// SyntaxErrorFormatter prints the offending line without an underline; the
// parser only reports a line, and the parser message goes in the note.
type SyntaxErrorFormatter struct{}

func (f *SyntaxErrorFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .Standard .Version .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .StartLine .MaxLineNumWidth .Padding -}}
{{message .Message .Padding -}}
{{note .Note}}
`
}
