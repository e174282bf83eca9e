package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/gnolang/later/internal"
	tt "github.com/gnolang/later/internal/types"
)

func init() {
	color.NoColor = true
}

func pos(line, col int) token.Position {
	return token.Position{Filename: "site.yml", Line: line, Column: col}
}

func TestGenerateFormattedIssue(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"---",
			"- name: web ",
			"  apt:",
			"     pkg: nginx",
		},
	}

	issues := []tt.Issue{
		{
			Rule:       "trailing-whitespace",
			Standard:   "STD0001",
			Version:    "0.1",
			Severity:   tt.SeverityWarning,
			Filename:   "site.yml",
			Start:      pos(2, 12),
			End:        pos(2, 12),
			Message:    "trailing whitespace",
			Suggestion: "- name: web",
		},
		{
			Rule:     "indentation",
			Severity: tt.SeverityError,
			Filename: "site.yml",
			Start:    pos(4, 1),
			End:      pos(4, 5),
			Message:  "wrong indentation: 5 spaces is not a multiple of 2",
		},
	}

	expected := `warning: trailing-whitespace [STD0001 0.1]
 --> site.yml:2:12
  |
2 | - name: web 
  |            ~
  = trailing whitespace
Suggestion:
  |
2 | - name: web
  |

error: indentation
 --> site.yml:4:1
  |
4 |      pkg: nginx
  | ~~~~~
  = wrong indentation: 5 spaces is not a multiple of 2

`

	result := GenerateFormattedIssue(issues, code)
	assert.Equal(t, expected, result, "Formatted output does not match expected")
}

func TestGenerateFormattedIssue_MultipleDigitsLineNumbers(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"---", "a: 1", "b: 2", "c: 3", "d: 4",
			"e: 5", "f: 6", "g: 7", "h: 8", "x: 1  ",
		},
	}

	issues := []tt.Issue{{
		Rule:     "trailing-whitespace",
		Severity: tt.SeverityWarning,
		Filename: "f.yml",
		Start:    token.Position{Line: 10, Column: 5},
		End:      token.Position{Line: 10, Column: 6},
		Message:  "trailing whitespace",
	}}

	expected := `warning: trailing-whitespace
  --> f.yml:10:5
   |
10 | x: 1  
   |     ~~
   = trailing whitespace

`

	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestSyntaxErrorFormatter(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{Lines: []string{"a: 1", "b: 2", "\tc: 3"}}

	issues := []tt.Issue{{
		Rule:     "yaml-syntax",
		Severity: tt.SeverityError,
		Filename: "bad.yml",
		Start:    token.Position{Line: 3, Column: 1},
		End:      token.Position{Line: 3, Column: 5},
		Message:  "syntax error",
		Note:     "yaml: line 3: found character that cannot start any token",
	}}

	expected := "error: yaml-syntax\n" +
		" --> bad.yml:3:1\n" +
		"  |\n" +
		"3 | \tc: 3\n" +
		"  = syntax error\n" +
		"Note: yaml: line 3: found character that cannot start any token\n" +
		"\n"

	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestGenerateFormattedIssue_LineOutOfRange(t *testing.T) {
	t.Parallel()

	issues := []tt.Issue{{
		Rule:     "document-start",
		Severity: tt.SeverityInfo,
		Filename: "f.yml",
		Start:    token.Position{Line: 5, Column: 1},
		End:      token.Position{Line: 5, Column: 1},
		Message:  "missing document start",
	}}

	expected := "info: document-start\n" +
		" --> f.yml:5:1\n" +
		"  |\n" +
		"  = missing document start\n" +
		"\n"

	assert.Equal(t, expected, GenerateFormattedIssue(issues, &internal.SourceCode{Lines: []string{"a: 1"}}))
	assert.Equal(t, expected, GenerateFormattedIssue(issues, nil))
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"key: value", 1, 0},
		{"key: value", 5, 4},
		{"\tkey", 2, 8},
		{"  \tkey", 4, 8},
		{"héllo ", 6, 5},
		{"abc", -1, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, calculateVisualColumn(tc.line, tc.column), "%q col %d", tc.line, tc.column)
	}
}

func TestGetCodeSnippet(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{Lines: []string{"a: 1", "b: 2", "c: 3"}}

	assert.Equal(t, "b: 2", GetCodeSnippet(tt.Issue{Start: pos(2, 1), End: pos(2, 4)}, code))
	assert.Equal(t, "b: 2\nc: 3", GetCodeSnippet(tt.Issue{Start: pos(2, 1), End: pos(9, 1)}, code))
	assert.Equal(t, "", GetCodeSnippet(tt.Issue{Start: pos(7, 1), End: pos(7, 1)}, code))
	assert.Equal(t, "", GetCodeSnippet(tt.Issue{Start: pos(1, 1), End: pos(1, 1)}, nil))
}
