package nolint

import (
	"fmt"
	"regexp"
	"strings"
)

// Markers are YAML comments:
//
//	key: value # nolint              suppress every rule on this line
//	# nolint:line-length,indentation suppress those rules on this and the next line
//	# nolint-file                    suppress every rule in the file
var markerRe = regexp.MustCompile(`(?:^|\s)#\s*nolint(-file)?(:[^#]*)?\s*$`)

// Manager manages nolint scopes and checks if a line is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope is an inclusive line range where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{scopes: make(map[string][]nolintScope)}
}

// ParseLines parses the nolint markers of one file and returns a Manager.
func ParseLines(filename string, lines []string) *Manager {
	m := NewManager()
	m.Add(filename, lines)
	return m
}

// Add parses the markers of filename into m.
func (m *Manager) Add(filename string, lines []string) {
	for i, line := range lines {
		ns, err := parseLine(line, i+1, len(lines))
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		m.scopes[filename] = append(m.scopes[filename], ns)
	}
}

func parseLine(line string, lineNo, total int) (nolintScope, error) {
	var ns nolintScope

	loc := markerRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return ns, fmt.Errorf("no nolint marker")
	}

	fileWide := loc[2] >= 0
	if loc[4] >= 0 {
		rest := strings.TrimSpace(line[loc[4]+1 : loc[5]])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
		ns.rules = parseIgnoreRuleNames(rest)
	} else {
		ns.rules = map[string]struct{}{}
	}

	switch {
	case fileWide:
		ns.start, ns.end = 1, total
	case strings.TrimSpace(line[:loc[0]]) != "":
		// inline: only the line carrying the marker
		ns.start, ns.end = lineNo, lineNo
	default:
		// standalone: the marker line and the line below it
		ns.start, ns.end = lineNo, lineNo+1
	}
	return ns, nil
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// IsNolint checks if a given line and rule are nolinted.
func (m *Manager) IsNolint(filename string, line int, ruleName string) bool {
	if m == nil {
		return false
	}
	for _, ns := range m.scopes[filename] {
		if line < ns.start || line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
