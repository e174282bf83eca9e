package standards

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/later/internal/config"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/internal/yamlutil"
)

const testManifest = `name: team
standards:
  - id: STD0001
    name: hygiene
    version: "0.1"
    rules: [trailing-whitespace, yaml-syntax]
  - id: STD0002
    name: layout
    version: "0.10"
    rules: [indentation, trailing-whitespace]
  - id: STD0003
    name: layout
    version: "0.9"
    rules: [line-length]
rules:
  line-length:
    severity: info
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standards.yml"), []byte(content), 0o644))
	return dir
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var cerr *config.ConfigurationError
	assert.True(t, errors.As(err, &cerr), "got %T: %v", err, err)
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	p, err := Read(writeManifest(t, testManifest))
	require.NoError(t, err)

	assert.Equal(t, "team", p.Name())
	assert.Len(t, p.Standards(), 3)
	assert.Equal(t, "0.10", p.Latest())

	_, ok := p.Rule(Indentation)
	assert.True(t, ok)
	_, ok = p.Rule(DocumentStart)
	assert.False(t, ok)

	checks := p.Checks()
	require.Len(t, checks, 4)
	byID := map[string]Check{}
	for _, c := range checks {
		byID[c.Rule.ID()] = c
	}
	assert.Equal(t, "STD0001", byID[TrailingWhitespace].Standard.ID)
	assert.Equal(t, tt.SeverityInfo, byID[LineLength].Severity)
	assert.Equal(t, tt.SeverityError, byID[Indentation].Severity)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	t.Run("not set", func(t *testing.T) {
		t.Parallel()
		_, err := Read("")
		requireConfigError(t, err)
		assert.Contains(t, err.Error(), "not set")
	})

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		_, err := Read(filepath.Join(t.TempDir(), "nowhere"))
		requireConfigError(t, err)
	})

	t.Run("no manifest", func(t *testing.T) {
		t.Parallel()
		_, err := Read(t.TempDir())
		requireConfigError(t, err)
	})

	t.Run("not a directory", func(t *testing.T) {
		t.Parallel()
		dir := writeManifest(t, testManifest)
		_, err := Read(filepath.Join(dir, "standards.yml"))
		requireConfigError(t, err)
	})

	bad := map[string]string{
		"malformed":        "standards: [",
		"unknown field":    "standards:\n  - id: A\n    rules: []\n    color: red\n",
		"unknown rule":     "standards:\n  - id: A\n    rules: [no-such-rule]\n",
		"duplicate id":     "standards:\n  - id: A\n  - id: A\n",
		"missing id":       "standards:\n  - name: nameless\n",
		"bad version":      "standards:\n  - id: A\n    version: banana\n",
		"empty":            "name: nothing\n",
		"orphan override":  "standards:\n  - id: A\n    rules: [indentation]\nrules:\n  line-length:\n    severity: off\n",
		"unknown severity": "standards:\n  - id: A\n    rules: [indentation]\nrules:\n  indentation:\n    severity: loud\n",
	}
	for name, content := range bad {
		name, content := name, content
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(writeManifest(t, content))
			requireConfigError(t, err)
		})
	}
}

func TestReadYamlExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standards.yaml"),
		[]byte("standards:\n  - id: A\n    rules: [line-length]\n"), 0o644))

	p, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "0.1", p.Latest(), "no versions falls back to default")
	assert.Equal(t, filepath.Join(dir, "standards.yaml"), p.Manifest())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	p, err := Read(writeManifest(t, testManifest))
	require.NoError(t, err)

	same, err := p.Select("")
	require.NoError(t, err)
	assert.Same(t, p, same)

	sel, err := p.Select("0.9")
	require.NoError(t, err)
	ids := []string{}
	for _, std := range sel.Standards() {
		ids = append(ids, std.ID)
	}
	assert.Equal(t, []string{"STD0001", "STD0003"}, ids)
	assert.Equal(t, "0.9", sel.Latest())

	_, ok := sel.Rule(Indentation)
	assert.False(t, ok)

	for _, c := range sel.Checks() {
		if c.Rule.ID() == LineLength {
			assert.Equal(t, tt.SeverityInfo, c.Severity, "overrides survive selection")
		}
	}

	_, err = p.Select("0.0.1")
	requireConfigError(t, err)

	_, err = p.Select("newest")
	requireConfigError(t, err)
}

func TestBuiltin(t *testing.T) {
	t.Parallel()

	p := Builtin()
	assert.Equal(t, "0.2", p.Latest())
	assert.Len(t, p.Checks(), 6)
	assert.Equal(t, "", p.Manifest())

	for _, id := range Registered() {
		_, ok := p.Rule(id)
		assert.True(t, ok, "builtin standards use %s", id)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		Register(func() Rule { return &lineLengthRule{} })
	})
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := expandHome("~/rules")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "rules"), got)

	got, err = expandHome("/abs/rules")
	require.NoError(t, err)
	assert.Equal(t, "/abs/rules", got)
}

func TestParseManifestSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest([]byte("name: x\nstandards:\n\t- id: A\n"))
	require.Error(t, err)

	var dfe *yamlutil.DataFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, 3, dfe.Line)

	_, err = ParseManifest([]byte("- just\n- a list\n"))
	require.True(t, errors.As(err, &dfe))
}
