package standards

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/later/internal/text"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/internal/yamlutil"
)

const (
	TrailingWhitespace = "trailing-whitespace"
	DocumentStart      = "document-start"
	LineLength         = "line-length"
	Indentation        = "indentation"
	TabIndentation     = "tab-indentation"
	YAMLSyntax         = "yaml-syntax"

	maxLineLength = 160
	indentWidth   = 2
)

func init() {
	Register(func() Rule { return &trailingWhitespaceRule{} })
	Register(func() Rule { return &documentStartRule{} })
	Register(func() Rule { return &lineLengthRule{max: maxLineLength} })
	Register(func() Rule { return &indentationRule{width: indentWidth} })
	Register(func() Rule { return &tabIndentationRule{} })
	Register(func() Rule { return &yamlSyntaxRule{} })
}

func newIssue(r Rule, f *File, line, startCol, endCol int, msg string) tt.Issue {
	return tt.Issue{
		Rule:     r.ID(),
		Filename: f.Name,
		Message:  msg,
		Severity: r.Severity(),
		Start:    token.Position{Filename: f.Name, Line: line, Column: startCol},
		End:      token.Position{Filename: f.Name, Line: line, Column: endCol},
	}
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

type trailingWhitespaceRule struct{}

func (r *trailingWhitespaceRule) ID() string            { return TrailingWhitespace }
func (r *trailingWhitespaceRule) Severity() tt.Severity { return tt.SeverityWarning }
func (r *trailingWhitespaceRule) Description() string {
	return "Lines should not end with whitespace"
}

func (r *trailingWhitespaceRule) Check(f *File) ([]tt.Issue, error) {
	var issues []tt.Issue
	for i, line := range f.Lines {
		_, trailing := text.CountSpaces(line)
		if trailing == 0 {
			continue
		}
		width := utf8.RuneCountInString(line)
		issue := newIssue(r, f, i+1, width-trailing+1, width, "trailing whitespace")
		issue.Suggestion = strings.TrimRightFunc(line, unicode.IsSpace)
		issues = append(issues, issue)
	}
	return issues, nil
}

type documentStartRule struct{}

func (r *documentStartRule) ID() string            { return DocumentStart }
func (r *documentStartRule) Severity() tt.Severity { return tt.SeverityWarning }
func (r *documentStartRule) Description() string {
	return "YAML files should start with the document marker '---'"
}

func (r *documentStartRule) Check(f *File) ([]tt.Issue, error) {
	for i, line := range f.Lines {
		if isBlank(line) || isComment(line) || strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "---") {
			return nil, nil
		}
		issue := newIssue(r, f, i+1, 1, utf8.RuneCountInString(line), "missing document start \"---\"")
		issue.Suggestion = "---\n" + line
		return []tt.Issue{issue}, nil
	}
	return nil, nil
}

type lineLengthRule struct {
	max int
}

func (r *lineLengthRule) ID() string            { return LineLength }
func (r *lineLengthRule) Severity() tt.Severity { return tt.SeverityWarning }
func (r *lineLengthRule) Description() string {
	return fmt.Sprintf("Lines should not be longer than %d characters", r.max)
}

func (r *lineLengthRule) Check(f *File) ([]tt.Issue, error) {
	var issues []tt.Issue
	for i, line := range f.Lines {
		width := utf8.RuneCountInString(line)
		if width <= r.max {
			continue
		}
		issues = append(issues, newIssue(r, f, i+1, r.max+1, width,
			fmt.Sprintf("line too long (%d > %d characters)", width, r.max)))
	}
	return issues, nil
}

type indentationRule struct {
	width int
}

func (r *indentationRule) ID() string            { return Indentation }
func (r *indentationRule) Severity() tt.Severity { return tt.SeverityError }
func (r *indentationRule) Description() string {
	return fmt.Sprintf("Indentation should be a multiple of %d spaces", r.width)
}

func (r *indentationRule) Check(f *File) ([]tt.Issue, error) {
	var issues []tt.Issue

	// indent of the line that opened a block scalar, -1 outside of one
	blockIndent := -1
	for i, line := range f.Lines {
		if isBlank(line) {
			continue
		}
		indent := leadingSpaces(line)
		if blockIndent >= 0 {
			if indent > blockIndent {
				continue
			}
			blockIndent = -1
		}
		if opensBlockScalar(line) {
			blockIndent = indent
		}
		if isComment(line) || strings.ContainsRune(text.Indent(line), '\t') {
			continue
		}
		if indent%r.width != 0 {
			issues = append(issues, newIssue(r, f, i+1, 1, indent,
				fmt.Sprintf("wrong indentation: %d spaces is not a multiple of %d", indent, r.width)))
		}
	}
	return issues, nil
}

func leadingSpaces(line string) int {
	n := 0
	for _, c := range line {
		if c != ' ' {
			break
		}
		n++
	}
	return n
}

// opensBlockScalar reports whether the value on line is a literal or folded
// block scalar ("key: |", "- >-", ...).
func opensBlockScalar(line string) bool {
	content := strings.TrimSpace(line)
	if idx := strings.Index(content, " #"); idx >= 0 {
		content = strings.TrimSpace(content[:idx])
	}
	if content == "" {
		return false
	}
	header := content[strings.LastIndexAny(content, " ")+1:]
	if header == "" || (header[0] != '|' && header[0] != '>') {
		return false
	}
	return strings.Trim(header[1:], "+-0123456789") == ""
}

type tabIndentationRule struct{}

func (r *tabIndentationRule) ID() string            { return TabIndentation }
func (r *tabIndentationRule) Severity() tt.Severity { return tt.SeverityError }
func (r *tabIndentationRule) Description() string {
	return "Tabs must not be used for indentation"
}

func (r *tabIndentationRule) Check(f *File) ([]tt.Issue, error) {
	var issues []tt.Issue
	for i, line := range f.Lines {
		indent := text.Indent(line)
		col := strings.IndexRune(indent, '\t')
		if col < 0 || isBlank(line) {
			continue
		}
		issue := newIssue(r, f, i+1, col+1, utf8.RuneCountInString(indent), "tab character used for indentation")
		issue.Suggestion = strings.ReplaceAll(indent, "\t", strings.Repeat(" ", indentWidth)) + strings.TrimLeft(line, " \t")
		issues = append(issues, issue)
	}
	return issues, nil
}

type yamlSyntaxRule struct{}

func (r *yamlSyntaxRule) ID() string            { return YAMLSyntax }
func (r *yamlSyntaxRule) Severity() tt.Severity { return tt.SeverityError }
func (r *yamlSyntaxRule) Description() string {
	return "Files must be valid YAML"
}

func (r *yamlSyntaxRule) Check(f *File) ([]tt.Issue, error) {
	_, err := yamlutil.SafeLoadAll(string(f.Data))
	if err == nil {
		return nil, nil
	}

	var dfe *yamlutil.DataFormatError
	if !errors.As(err, &dfe) {
		return nil, err
	}

	line := dfe.Line
	if line < 1 || line > len(f.Lines) {
		line = 1
	}
	endCol := 1
	if len(f.Lines) >= line {
		endCol = utf8.RuneCountInString(f.Lines[line-1])
	}
	issue := newIssue(r, f, line, 1, endCol, "syntax error")
	issue.Note = dfe.Err.Error()
	return []tt.Issue{issue}, nil
}
