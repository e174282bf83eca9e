package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/later/internal"
	"github.com/gnolang/later/internal/standards"
	tt "github.com/gnolang/later/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	standardStyle   = color.New(color.FgMagenta)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// issueFormatter is the interface that wraps the IssueTemplate method.
// Implementations of this interface are responsible for formatting specific types of lint issues.
type issueFormatter interface {
	IssueTemplate() string
}

// getIssueFormatter returns the formatter for rule, falling back to
// GeneralIssueFormatter.
func getIssueFormatter(rule string) issueFormatter {
	switch rule {
	case standards.YAMLSyntax:
		return &SyntaxErrorFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
// It uses the appropriate formatter for each issue based on its rule.
func GenerateFormattedIssue(issues []tt.Issue, snippet *internal.SourceCode) string {
	if snippet == nil {
		snippet = &internal.SourceCode{}
	}
	var builder strings.Builder
	for _, issue := range issues {
		formatter := getIssueFormatter(issue.Rule)
		builder.WriteString(buildIssue(issue, snippet, formatter))
	}
	return builder.String()
}

/***** Issue Formatter Builder *****/

type IssueData struct {
	Severity        string
	Rule            string
	Standard        string
	Version         string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Suggestion      string
	Note            string
	SnippetLines    []string
}

var funcMap = template.FuncMap{
	"header":              header,
	"suggestion":          suggestion,
	"note":                note,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"message":             message,
}

func buildIssue(issue tt.Issue, snippet *internal.SourceCode, formatter issueFormatter) string {
	startLine := issue.Start.Line
	endLine := issue.End.Line
	if endLine < startLine {
		endLine = startLine
	}
	maxLineNumWidth := calculateMaxLineNumWidth(endLine)
	padding := strings.Repeat(" ", maxLineNumWidth+1)

	data := IssueData{
		Severity:        issue.Severity.String(),
		Rule:            issue.Rule,
		Standard:        issue.Standard,
		Version:         issue.Version,
		Filename:        issue.Filename,
		StartLine:       startLine,
		StartColumn:     issue.Start.Column,
		EndLine:         endLine,
		EndColumn:       issue.End.Column,
		Message:         issue.Message,
		Suggestion:      issue.Suggestion,
		Note:            issue.Note,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         padding,
		SnippetLines:    snippet.Lines,
	}

	tmpl := template.Must(template.New("issue").Funcs(funcMap).Parse(formatter.IssueTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(rule, severity, standard, version string, maxLineNumWidth int, filename string, startLine, startColumn int) string {
	var sb strings.Builder
	switch severity {
	case "ERROR":
		sb.WriteString(errorStyle.Sprint("error: "))
	case "WARNING":
		sb.WriteString(warningStyle.Sprint("warning: "))
	case "INFO":
		sb.WriteString(infoStyle.Sprint("info: "))
	}

	sb.WriteString(ruleStyle.Sprint(rule))
	if standard != "" {
		sb.WriteString(standardStyle.Sprintf(" [%s", standard))
		if version != "" {
			sb.WriteString(standardStyle.Sprintf(" %s", version))
		}
		sb.WriteString(standardStyle.Sprint("]"))
	}
	sb.WriteString("\n")

	padding := strings.Repeat(" ", maxLineNumWidth)
	sb.WriteString(lineStyle.Sprintf("%s--> ", padding))
	sb.WriteString(fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn))
	sb.WriteString("\n")
	return sb.String()
}

// codeSnippet prints the lines verbatim; indentation is significant in YAML.
func codeSnippet(snippetLines []string, startLine, endLine, maxLineNumWidth int, padding string) string {
	var sb strings.Builder
	sb.WriteString(lineStyle.Sprintf("%s|\n", padding))

	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(snippetLines) {
			continue
		}

		line := snippetLines[i-1]
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		sb.WriteString(lineStyle.Sprintf("%s | ", lineNum))
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func underlineAndMessage(msg, padding string, startLine, endLine, startColumn, endColumn int, snippetLines []string) string {
	if !isValidLineRange(startLine, endLine, snippetLines) {
		return message(msg, padding)
	}

	var sb strings.Builder
	sb.WriteString(lineStyle.Sprintf("%s| ", padding))

	underlineStart := calculateVisualColumn(snippetLines[startLine-1], startColumn)
	underlineEnd := calculateVisualColumn(snippetLines[endLine-1], endColumn)
	underlineLength := underlineEnd - underlineStart + 1
	if underlineLength < 1 {
		underlineLength = 1
	}

	sb.WriteString(strings.Repeat(" ", underlineStart))
	sb.WriteString(messageStyle.Sprintf("%s\n", strings.Repeat("~", underlineLength)))

	sb.WriteString(lineStyle.Sprintf("%s= ", padding))
	sb.WriteString(messageStyle.Sprintf("%s\n", msg))
	return sb.String()
}

func message(msg, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprintf("%s\n", msg)
}

func suggestion(suggestion, padding string, maxLineNumWidth, startLine int) string {
	if suggestion == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(suggestionStyle.Sprint("Suggestion:\n"))
	sb.WriteString(lineStyle.Sprintf("%s|\n", padding))

	for i, line := range strings.Split(suggestion, "\n") {
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, startLine+i)
		sb.WriteString(lineStyle.Sprintf("%s | ", lineNum))
		sb.WriteString(line + "\n")
	}

	sb.WriteString(lineStyle.Sprintf("%s|\n", padding))
	return sb.String()
}

func note(note string) string {
	if note == "" {
		return ""
	}
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", note)
}

func isValidLineRange(startLine, endLine int, snippetLines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn calculates the visual column position
// in a string, taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range []rune(line) {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}
