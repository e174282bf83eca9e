// Package fixer rewrites YAML files with the replacement lines that rules
// attach to their issues.
package fixer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/internal/yamlutil"
)

type Fixer struct {
	DryRun bool
	Out    io.Writer
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = io.Discard
	}
	return &Fixer{
		DryRun: dryRun,
		Out:    out,
	}
}

// Fix applies the single-line suggestions in issues to filename and returns
// how many were applied. A line is rewritten at most once per call. A file
// that parsed before fixing must still parse afterwards, otherwise nothing
// is written.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (int, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	fixable := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Suggestion != "" && issue.Start.Line > 0 && issue.Start.Line == issue.End.Line {
			fixable = append(fixable, issue)
		}
	}
	// bottom up, so inserted lines do not shift pending ones
	sort.SliceStable(fixable, func(i, j int) bool {
		if fixable[i].Start.Line != fixable[j].Start.Line {
			return fixable[i].Start.Line > fixable[j].Start.Line
		}
		return fixable[i].Rule < fixable[j].Rule
	})

	lines := strings.Split(string(content), "\n")
	touched := make(map[int]bool, len(fixable))
	applied := 0

	for _, issue := range fixable {
		idx := issue.Start.Line - 1
		if idx >= len(lines) || touched[idx] {
			continue
		}
		touched[idx] = true
		applied++

		if f.DryRun {
			fmt.Fprintf(f.Out, "Would fix %s in %s at line %d: %s\n", issue.Rule, filename, issue.Start.Line, issue.Message)
			fmt.Fprintf(f.Out, "Suggestion:\n%s\n", issue.Suggestion)
			continue
		}

		replacement := strings.Split(issue.Suggestion, "\n")
		lines = append(lines[:idx], append(replacement, lines[idx+1:]...)...)
	}

	if f.DryRun || applied == 0 {
		return applied, nil
	}

	newContent := strings.Join(lines, "\n")
	if _, err := yamlutil.SafeLoadAll(string(content)); err == nil {
		if _, err := yamlutil.SafeLoadAll(newContent); err != nil {
			return 0, fmt.Errorf("fixing %s would make it invalid: %w", filename, err)
		}
	}

	if err := os.WriteFile(filename, []byte(newContent), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.Out, "Fixed %d issue(s) in %s\n", applied, filename)
	return applied, nil
}
