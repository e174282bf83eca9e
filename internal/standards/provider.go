// Package standards resolves which rules a run checks.
//
// A standard is a versioned, named group of rules. Rules are compiled in
// and registered by ID; the user selects and groups them with a
// standards.yml manifest stored in the rules directory.
package standards

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/later/internal/config"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/internal/version"
	"github.com/gnolang/later/internal/yamlutil"
)

// ManifestNames are tried in order inside the rules directory.
var ManifestNames = []string{"standards.yml", "standards.yaml"}

// Standard is a versioned group of rules.
type Standard struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Rules   []string `yaml:"rules"`
}

// Manifest is the on-disk form of a rules directory.
type Manifest struct {
	Name      string                   `yaml:"name"`
	Standards []Standard               `yaml:"standards"`
	Rules     map[string]tt.ConfigRule `yaml:"rules,omitempty"`
}

// RuleProvider supplies the standards of a run and the rules they name.
type RuleProvider interface {
	Standards() []Standard
	Rule(id string) (Rule, bool)
}

// Check pairs a rule with the first standard that enables it.
type Check struct {
	Rule     Rule
	Standard Standard
	Severity tt.Severity
}

// Provider is an immutable RuleProvider.
type Provider struct {
	name       string
	manifest   string
	standards  []Standard
	rules      map[string]Rule
	severities map[string]tt.Severity
}

var _ RuleProvider = (*Provider)(nil)

// Builtin returns the standards shipped with the binary.
func Builtin() *Provider {
	p, err := newProvider("", Manifest{
		Name: "builtin",
		Standards: []Standard{
			{
				ID:      "STD0001",
				Name:    "Basic YAML hygiene",
				Version: "0.1",
				Rules:   []string{YAMLSyntax, TrailingWhitespace, DocumentStart},
			},
			{
				ID:      "STD0002",
				Name:    "Consistent layout",
				Version: "0.2",
				Rules:   []string{TabIndentation, Indentation, LineLength},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return p
}

// Read loads the manifest from rulesDir. Every failure is a
// *config.ConfigurationError, since a run cannot go on without standards.
func Read(rulesDir string) (*Provider, error) {
	if strings.TrimSpace(rulesDir) == "" {
		return nil, &config.ConfigurationError{
			Err: errors.New("standards directory is not set on command line or in configuration file"),
		}
	}

	dir, err := expandHome(rulesDir)
	if err != nil {
		return nil, &config.ConfigurationError{Path: rulesDir, Err: err}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, config.Errorf(rulesDir, "could not read standards directory: %v", err)
	}
	if !info.IsDir() {
		return nil, config.Errorf(rulesDir, "standards path is not a directory")
	}

	path, err := findManifest(dir)
	if err != nil {
		return nil, &config.ConfigurationError{Path: rulesDir, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.ConfigurationError{Path: path, Err: err}
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, &config.ConfigurationError{Path: path, Err: err}
	}

	p, err := newProvider(path, m)
	if err != nil {
		return nil, &config.ConfigurationError{Path: path, Err: err}
	}
	return p, nil
}

// ParseManifest decodes a manifest, rejecting unknown fields. Syntax errors
// come back as *yamlutil.DataFormatError.
func ParseManifest(data []byte) (Manifest, error) {
	if _, err := yamlutil.Load(string(data), yamlutil.FailClosed, nil); err != nil {
		return Manifest{}, fmt.Errorf("malformed standards manifest: %w", err)
	}

	var m Manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("malformed standards manifest: %w", err)
	}
	return m, nil
}

func newProvider(path string, m Manifest) (*Provider, error) {
	if len(m.Standards) == 0 {
		return nil, errors.New("no standards defined")
	}

	p := &Provider{
		name:       m.Name,
		manifest:   path,
		standards:  make([]Standard, 0, len(m.Standards)),
		rules:      make(map[string]Rule),
		severities: make(map[string]tt.Severity),
	}

	seen := make(map[string]bool, len(m.Standards))
	for _, std := range m.Standards {
		if std.ID == "" {
			return nil, fmt.Errorf("standard %q has no id", std.Name)
		}
		if seen[std.ID] {
			return nil, fmt.Errorf("standard %s defined twice", std.ID)
		}
		seen[std.ID] = true

		if std.Version != "" && !version.Valid(std.Version) {
			return nil, fmt.Errorf("standard %s: invalid version %q", std.ID, std.Version)
		}

		for _, id := range std.Rules {
			if _, ok := p.rules[id]; ok {
				continue
			}
			rule, ok := NewRule(id)
			if !ok {
				return nil, fmt.Errorf("standard %s: unknown rule %q", std.ID, id)
			}
			p.rules[id] = rule
			p.severities[id] = rule.Severity()
		}
		p.standards = append(p.standards, std)
	}

	for id, cr := range m.Rules {
		if _, ok := p.rules[id]; !ok {
			return nil, fmt.Errorf("severity override for rule %q which no standard uses", id)
		}
		p.severities[id] = cr.Severity
	}

	return p, nil
}

// Name of the manifest.
func (p *Provider) Name() string { return p.name }

// Manifest returns the path the provider was read from, empty for Builtin.
func (p *Provider) Manifest() string { return p.manifest }

// Standards returns a copy of the standards in manifest order.
func (p *Provider) Standards() []Standard {
	out := make([]Standard, len(p.standards))
	copy(out, p.standards)
	return out
}

// Rule returns the rule with the given id if some standard uses it.
func (p *Provider) Rule(id string) (Rule, bool) {
	r, ok := p.rules[id]
	return r, ok
}

// Latest returns the newest standards version, "0.1" when none is set.
func (p *Provider) Latest() string {
	versions := make([]string, 0, len(p.standards))
	for _, std := range p.standards {
		versions = append(versions, std.Version)
	}
	return version.Latest(versions...)
}

// Select returns a provider limited to the standards whose version is not
// newer than upTo. Standards without a version are always kept. An empty
// upTo returns p unchanged.
func (p *Provider) Select(upTo string) (*Provider, error) {
	if strings.TrimSpace(upTo) == "" {
		return p, nil
	}
	if !version.Valid(upTo) {
		return nil, config.Errorf(p.manifest, "invalid standards version %q", upTo)
	}

	m := Manifest{Name: p.name, Rules: map[string]tt.ConfigRule{}}
	for _, std := range p.standards {
		if std.Version != "" {
			c, err := version.Compare(std.Version, upTo)
			if err != nil {
				return nil, err
			}
			if c > 0 {
				continue
			}
		}
		m.Standards = append(m.Standards, std)
	}
	if len(m.Standards) == 0 {
		return nil, config.Errorf(p.manifest, "no standards up to version %s", upTo)
	}

	selected, err := newProvider(p.manifest, m)
	if err != nil {
		return nil, err
	}
	for id := range selected.rules {
		selected.severities[id] = p.severities[id]
	}
	return selected, nil
}

// Checks lists every rule once, attributed to the first standard enabling
// it, ordered by rule id.
func (p *Provider) Checks() []Check {
	owner := make(map[string]Standard, len(p.rules))
	for _, std := range p.standards {
		for _, id := range std.Rules {
			if _, ok := owner[id]; !ok {
				owner[id] = std
			}
		}
	}

	checks := make([]Check, 0, len(p.rules))
	for id, rule := range p.rules {
		checks = append(checks, Check{Rule: rule, Standard: owner[id], Severity: p.severities[id]})
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].Rule.ID() < checks[j].Rule.ID() })
	return checks
}

func findManifest(dir string) (string, error) {
	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("could not find %s in standards directory", strings.Join(ManifestNames, " or "))
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Abs(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
