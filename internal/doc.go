// Package internal runs the rules of a standards provider over YAML files.
//
// Key components:
//
// Engine: applies every selected rule to one file concurrently, then drops
// issues suppressed by "# nolint" markers, issues of ignored rules and
// issues whose line falls outside the configured line ranges.
//
// Cache: a gob file of previous results keyed by filename. An entry is
// reused only while the file's hash, its modification time and the selected
// checks are unchanged, and all entries are dropped when the standards
// manifest changes.
//
// Watch mode: StartWatching re-lints YAML files as they are written.
//
// SourceCode: the lines of a file, as used by the formatter.
//
// Usage:
//
//	engine, err := internal.NewEngine(standards.Builtin(), internal.WithRanges(rs))
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("site.yml")
//	if err != nil {
//	    // handle error
//	}
package internal
