package formatter

import (
	"strings"

	"github.com/gnolang/later/internal"
	tt "github.com/gnolang/later/internal/types"
)

// GetCodeSnippet returns the source lines an issue spans, or "" when they
// fall outside the file.
func GetCodeSnippet(issue tt.Issue, snippet *internal.SourceCode) string {
	if snippet == nil {
		return ""
	}
	startLine := issue.Start.Line - 1
	endLine := issue.End.Line
	if endLine > len(snippet.Lines) {
		endLine = len(snippet.Lines)
	}
	if startLine < 0 || startLine >= endLine {
		return ""
	}
	return strings.Join(snippet.Lines[startLine:endLine], "\n")
}
