package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/later/internal/nolint"
	"github.com/gnolang/later/internal/ranges"
	"github.com/gnolang/later/internal/standards"
	tt "github.com/gnolang/later/internal/types"
)

// Engine manages the linting process.
type Engine struct {
	provider     *standards.Provider
	checks       []standards.Check
	ranges       *ranges.RangeSet
	ignoredRules map[string]bool
	ignoredPaths []string
	cache        *Cache
	logger       *zap.Logger

	watcher   *fsnotify.Watcher
	watchDirs []string
	stopWatch chan struct{}
	watchWG   sync.WaitGroup
	onIssues  func(filename string, issues []tt.Issue)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRanges restricts reported issues to lines inside rs. A nil rs
// reports everything.
func WithRanges(rs *ranges.RangeSet) Option {
	return func(e *Engine) { e.ranges = rs }
}

// WithCache reuses results of unchanged files.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the logger used by watch mode and cache failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a new lint engine checking the rules of provider.
func NewEngine(provider *standards.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("no standards provider")
	}

	engine := &Engine{
		provider:     provider,
		checks:       provider.Checks(),
		ignoredRules: make(map[string]bool),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}

	if engine.cache != nil {
		engine.cache.SetSelection(selectionKey(engine.checks))
		if provider.Manifest() != "" {
			if err := engine.cache.AddDependency(provider.Manifest()); err != nil {
				return nil, err
			}
		}
	}
	return engine, nil
}

// selectionKey identifies a set of checks. checks are sorted by rule ID.
func selectionKey(checks []standards.Check) string {
	var b strings.Builder
	for _, c := range checks {
		fmt.Fprintf(&b, "%s@%s:%s:%s;", c.Rule.ID(), c.Standard.ID, c.Standard.Version, c.Severity)
	}
	return b.String()
}

// Run applies all lint rules to the given file and returns a slice of Issues.
// Files matching an ignored path yield no issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}

	if e.cache != nil {
		if issues, ok := e.cache.Get(filename); ok {
			return e.filter(issues), nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	issues, err := e.check(filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, issues); err != nil {
			e.logger.Warn("Failed to update cache", zap.String("file", filename), zap.Error(err))
		}
	}

	return e.filter(issues), nil
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	issues, err := e.check("", source)
	if err != nil {
		return nil, err
	}
	return e.filter(issues), nil
}

// check runs every check concurrently and drops nolinted issues. Ignored
// rules and line ranges are applied later by filter so cached results stay
// valid across runs with different flags.
func (e *Engine) check(filename string, source []byte) ([]tt.Issue, error) {
	file := standards.NewFile(filename, source)
	nolintMgr := nolint.ParseLines(filename, file.Lines)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		allIssues []tt.Issue
		firstErr  error
	)

	for _, c := range e.checks {
		if c.Severity == tt.SeverityOff {
			continue
		}
		wg.Add(1)
		go func(c standards.Check) {
			defer wg.Done()
			issues, err := c.Rule.Check(file)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("rule %s: %w", c.Rule.ID(), err)
				}
				mu.Unlock()
				return
			}

			kept := make([]tt.Issue, 0, len(issues))
			for _, issue := range issues {
				if nolintMgr.IsNolint(filename, issue.Start.Line, issue.Rule) {
					continue
				}
				issue.Standard = c.Standard.ID
				issue.Version = c.Standard.Version
				issue.Severity = c.Severity
				kept = append(kept, issue)
			}

			mu.Lock()
			allIssues = append(allIssues, kept...)
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sortIssues(allIssues)
	return allIssues, nil
}

// filter drops issues of ignored rules and issues outside the line ranges.
func (e *Engine) filter(issues []tt.Issue) []tt.Issue {
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if e.ignoredRules[issue.Rule] {
			continue
		}
		if !e.ranges.Contains(issue.Start.Line) {
			continue
		}
		filtered = append(filtered, issue)
	}
	return filtered
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		if a.Start.Column != b.Start.Column {
			return a.Start.Column < b.Start.Column
		}
		return a.Rule < b.Rule
	})
}

// IgnoreRule disables a rule for subsequent runs. It must not be called
// while runs are in progress.
func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching pattern. A pattern is either a glob
// matched against the path and its base name, or a directory prefix
// ending in "/".
func (e *Engine) IgnorePath(pattern string) {
	if pattern != "" {
		e.ignoredPaths = append(e.ignoredPaths, pattern)
	}
}

func (e *Engine) isIgnoredPath(filename string) bool {
	clean := filepath.ToSlash(filepath.Clean(filename))
	for _, pattern := range e.ignoredPaths {
		if strings.HasSuffix(pattern, "/") {
			dir := strings.TrimPrefix(pattern, "./")
			if strings.HasPrefix(clean, dir) || strings.Contains(clean, "/"+dir) {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, clean); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(clean)); ok {
			return true
		}
	}
	return false
}

// Provider returns the standards the engine checks.
func (e *Engine) Provider() *standards.Provider {
	return e.provider
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
