package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/later/internal/config"
	"github.com/gnolang/later/internal/standards"
	tt "github.com/gnolang/later/internal/types"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// TestProcessPathContextCancellation tests that context cancellation is handled properly
func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFiles(t, tempDir, map[string]string{
			fmt.Sprintf("play%d.yml", i): "---\n- hosts: all \n",
		})
	}

	engine, err := New(nil, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issues, err := ProcessPath(ctx, nil, engine, tempDir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, issues)
}

func TestNewWithSettings(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeFiles(t, tempDir, map[string]string{
		"rules/standards.yml": "standards:\n" +
			"  - id: STD0001\n    version: \"0.1\"\n    rules: [trailing-whitespace]\n" +
			"  - id: STD0002\n    version: \"0.2\"\n    rules: [indentation]\n",
		"play/site.yml":      "---\n- name: a \n   x: 1\n- name: b \n",
		"play/vendor/ext.yml": "---\n- name: c \n",
	})

	settings := config.Defaults()
	settings.RulesDir = filepath.Join(tempDir, "rules")
	settings.Standards = "0.1"
	settings.Exclude = []string{"vendor/"}
	require.NoError(t, settings.SetLines("1-3"))

	engine, err := New(settings, Options{})
	require.NoError(t, err)

	issues, err := ProcessFiles(context.Background(), nil, engine, []string{filepath.Join(tempDir, "play")}, ProcessFile)
	require.NoError(t, err)

	// only STD0001 (0.1) is active, line 4 is outside the range and vendor/ is excluded
	require.Len(t, issues, 1)
	assert.Equal(t, standards.TrailingWhitespace, issues[0].Rule)
	assert.Equal(t, 2, issues[0].Start.Line)
	assert.Equal(t, "STD0001", issues[0].Standard)
}

func TestNewOptionsOverrideSettings(t *testing.T) {
	t.Parallel()

	settings := config.Defaults()
	settings.RulesDir = filepath.Join(t.TempDir(), "missing")

	_, err := New(settings, Options{})
	var cerr *config.ConfigurationError
	require.True(t, errors.As(err, &cerr))

	// builtin standards capped at 0.1
	engine, err := New(nil, Options{Standards: "0.1"})
	require.NoError(t, err)
	issues, err := engine.RunSource([]byte("---\n\tkey: value \n"))
	require.NoError(t, err)
	for _, issue := range issues {
		assert.NotEqual(t, standards.TabIndentation, issue.Rule)
	}

	_, err = New(nil, Options{Standards: "not-a-version"})
	assert.Error(t, err)
}

func TestNewWithCache(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeFiles(t, tempDir, map[string]string{"site.yml": "---\nkey: value \n"})

	engine, err := New(nil, Options{CacheDir: filepath.Join(tempDir, ".cache")})
	require.NoError(t, err)

	var runs [][]tt.Issue
	for i := 0; i < 2; i++ {
		issues, err := ProcessPath(context.Background(), nil, engine, filepath.Join(tempDir, "site.yml"), ProcessFile)
		require.NoError(t, err)
		runs = append(runs, issues)
	}
	assert.Equal(t, runs[0], runs[1])
	assert.FileExists(t, filepath.Join(tempDir, ".cache", "lint_cache.gob"))
}
