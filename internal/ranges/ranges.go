// Package ranges parses line-range specifications such as "3-5,8-8" and
// answers whether a given line number falls inside one of the intervals.
//
// A nil *RangeSet is the NoRestriction value: every line matches. This is
// different from a RangeSet with no intervals, which matches nothing.
package ranges

import (
	"fmt"
	"strconv"
	"strings"
)

// NoRestriction is returned by Parse for a blank input.
var NoRestriction *RangeSet

// Interval is an inclusive range of line numbers.
type Interval struct {
	Start int
	End   int
}

// Contains reports whether line lies within [Start, End].
func (i Interval) Contains(line int) bool {
	return i.Start <= line && line <= i.End
}

func (i Interval) String() string {
	return fmt.Sprintf("%d-%d", i.Start, i.End)
}

// RangeSet is an immutable set of intervals in the order they were given.
type RangeSet struct {
	intervals []Interval
}

// ParseError describes a malformed token in a line-range list.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid line range %q: %s", e.Token, e.Reason)
}

// Parse builds a RangeSet from a comma separated list of "start-end" tokens.
// An empty or blank spec yields NoRestriction.
func Parse(spec string) (*RangeSet, error) {
	if strings.TrimSpace(spec) == "" {
		return NoRestriction, nil
	}

	tokens := strings.Split(spec, ",")
	set := &RangeSet{intervals: make([]Interval, 0, len(tokens))}
	for _, tok := range tokens {
		interval, err := parseInterval(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		set.intervals = append(set.intervals, interval)
	}
	return set, nil
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) *RangeSet {
	set, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return set
}

func parseInterval(tok string) (Interval, error) {
	if tok == "" {
		return Interval{}, &ParseError{Token: tok, Reason: "empty interval"}
	}

	lo, hi, found := strings.Cut(tok, "-")
	if !found {
		return Interval{}, &ParseError{Token: tok, Reason: "missing '-' separator"}
	}

	start, err := parseBound(lo)
	if err != nil {
		return Interval{}, &ParseError{Token: tok, Reason: "start " + err.Error()}
	}
	end, err := parseBound(hi)
	if err != nil {
		return Interval{}, &ParseError{Token: tok, Reason: "end " + err.Error()}
	}

	if start > end {
		return Interval{}, &ParseError{
			Token:  tok,
			Reason: fmt.Sprintf("start %d is greater than end %d", start, end),
		}
	}
	return Interval{Start: start, End: end}, nil
}

func parseBound(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("is empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

// Contains reports whether line lies within at least one interval.
// A nil set matches every line.
func (s *RangeSet) Contains(line int) bool {
	if s == nil {
		return true
	}
	for _, interval := range s.intervals {
		if interval.Contains(line) {
			return true
		}
	}
	return false
}

// Unrestricted reports whether s is NoRestriction.
func (s *RangeSet) Unrestricted() bool {
	return s == nil
}

// Intervals returns a copy of the parsed intervals.
func (s *RangeSet) Intervals() []Interval {
	if s == nil {
		return nil
	}
	out := make([]Interval, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// String returns the canonical "a-b,c-d" form. NoRestriction prints as "".
func (s *RangeSet) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, len(s.intervals))
	for i, interval := range s.intervals {
		parts[i] = interval.String()
	}
	return strings.Join(parts, ",")
}
