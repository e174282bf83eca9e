package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/later/internal/ranges"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFileDefaults(t *testing.T) {
	t.Parallel()

	s, err := FromFile("")
	require.NoError(t, err)
	assert.Equal(t, "", s.Path)
	assert.Equal(t, "", s.Standards)
	assert.Equal(t, "info", s.LogLevel)
	assert.Nil(t, s.Ranges)
	assert.True(t, s.Ranges.Contains(-7))
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "later.ini", `
[rules]
rulesdir = ~/standards
standards = 0.2
lines = 3-5,8-8
exclude = vendor/, .git/

[logging]
level = debug

[custom]
answer = 42
`)

	s, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, s.Path)
	assert.Equal(t, "~/standards", s.RulesDir)
	assert.Equal(t, "0.2", s.Standards)
	assert.Equal(t, []string{"vendor/", ".git/"}, s.Exclude)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "42", s.Raw["custom.answer"])

	require.NotNil(t, s.Ranges)
	assert.Equal(t, []ranges.Interval{{Start: 3, End: 5}, {Start: 8, End: 8}}, s.Ranges.Intervals())
}

func TestFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := FromFile(filepath.Join(t.TempDir(), "nope.ini"))
	require.Error(t, err)

	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestFromFileMalformed(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.ini", "[rules\nkey = value\n")

	_, err := FromFile(path)
	var cerr *ConfigurationError
	assert.True(t, errors.As(err, &cerr))
}

func TestFromFileBadLines(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "lines.ini", "[rules]\nlines = 5-3\n")

	_, err := FromFile(path)
	require.Error(t, err)

	var cerr *ConfigurationError
	assert.True(t, errors.As(err, &cerr))

	var perr *ranges.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "5-3", perr.Token)
}

func TestReadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "later.ini", "[rules]\nrulesdir = /from/file\nlines = 1-2\n")

	t.Setenv("LATER_RULESDIR", "/from/env")
	t.Setenv("LATER_LINES", "10-12")
	t.Setenv("LATER_LOG_LEVEL", "warn")

	s, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", s.RulesDir)
	assert.Equal(t, "warn", s.LogLevel)
	assert.True(t, s.Ranges.Contains(11))
	assert.False(t, s.Ranges.Contains(1))
}

func TestReadEnvBadLines(t *testing.T) {
	t.Setenv("LATER_LINES", "abc")

	_, err := Read("")
	var cerr *ConfigurationError
	assert.True(t, errors.As(err, &cerr))
}

func TestSetLines(t *testing.T) {
	t.Parallel()

	s := Defaults()
	require.NoError(t, s.SetLines("1-1"))
	assert.False(t, s.Ranges.Contains(2))

	require.NoError(t, s.SetLines(""))
	assert.Nil(t, s.Ranges)

	assert.Error(t, s.SetLines("7"))
	assert.Equal(t, "", s.Lines, "failed update keeps previous value")
}

func TestTree(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "later.ini", "[rules]\nstandards = 0.1\nlines = 1-3\n[extra]\nk = v\n")
	s, err := FromFile(path)
	require.NoError(t, err)

	tree := s.Tree()
	rules, ok := tree["rules"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0.1", rules["standards"])
	assert.Equal(t, "1-3", rules["lines"])
	assert.Equal(t, map[string]any{"k": "v"}, tree["extra"])
	assert.Equal(t, map[string]any{"level": "info"}, tree["logging"])
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".later.ini")
	require.NoError(t, WriteDefault(path))

	s, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Contains(t, s.Raw, "rules.rulesdir")
	assert.Nil(t, s.Ranges)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	path := writeFile(t, dir, ".env", "LATER_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { os.Unsetenv("LATER_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("LATER_TEST_DOTENV"))
}
