// Package config reads the INI settings file and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/ini.v1"

	"github.com/gnolang/later/internal/dict"
	"github.com/gnolang/later/internal/ranges"
)

const (
	// DefaultPath is looked up when no config file is given on the command line.
	DefaultPath = ".later.ini"

	envPrefix = "later"

	sectionRules   = "rules"
	sectionLogging = "logging"

	keyStandards = "standards"
	keyRulesDir  = "rulesdir"
	keyLines     = "lines"
	keyExclude   = "exclude"
	keyLevel     = "level"

	defaultLogLevel = "info"
)

// Settings is the effective configuration of a run.
type Settings struct {
	// Path of the file the settings were read from, empty for defaults.
	Path string

	RulesDir string
	// Standards caps the standards version to check against. Empty means
	// no cap.
	Standards string
	Lines     string
	Exclude   []string
	LogLevel  string

	// Ranges is Lines parsed; nil means every line is checked.
	Ranges *ranges.RangeSet

	// Raw holds every key of the file as "section.key".
	Raw map[string]string
}

// EnvConfig holds the LATER_* environment overrides.
type EnvConfig struct {
	// Env: LATER_RULESDIR
	RulesDir string `envconfig:"RULESDIR"`
	// Env: LATER_STANDARDS
	Standards string `envconfig:"STANDARDS"`
	// Env: LATER_LINES
	Lines string `envconfig:"LINES"`
	// Env: LATER_EXCLUDE (comma separated)
	Exclude []string `envconfig:"EXCLUDE"`
	// Env: LATER_LOG_LEVEL
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// Defaults returns settings used when no file is present.
func Defaults() *Settings {
	return &Settings{
		LogLevel: defaultLogLevel,
		Raw:      map[string]string{},
	}
}

// Read loads path, then applies LATER_* environment variables. An empty
// path yields the defaults. A path that does not exist is an error.
func Read(path string) (*Settings, error) {
	s, err := FromFile(path)
	if err != nil {
		return nil, err
	}

	var env EnvConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, &ConfigurationError{Path: path, Err: fmt.Errorf("environment: %w", err)}
	}
	s.applyEnv(env)

	if err := s.SetLines(s.Lines); err != nil {
		return nil, err
	}
	return s, nil
}

// FromFile reads settings from path without looking at the environment.
func FromFile(path string) (*Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Errorf(path, "file does not exist")
		}
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	s.Path = path

	for _, sec := range file.Sections() {
		for _, key := range sec.Keys() {
			s.Raw[rawKey(sec.Name(), key.Name())] = key.String()
		}
	}

	rules := file.Section(sectionRules)
	s.Standards = rules.Key(keyStandards).String()
	s.RulesDir = rules.Key(keyRulesDir).String()
	s.Lines = rules.Key(keyLines).String()
	s.Exclude = splitList(rules.Key(keyExclude).String())

	if lvl := file.Section(sectionLogging).Key(keyLevel).String(); lvl != "" {
		s.LogLevel = lvl
	}

	if err := s.SetLines(s.Lines); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv(env EnvConfig) {
	if env.RulesDir != "" {
		s.RulesDir = env.RulesDir
	}
	if env.Standards != "" {
		s.Standards = env.Standards
	}
	if env.Lines != "" {
		s.Lines = env.Lines
	}
	if len(env.Exclude) > 0 {
		s.Exclude = env.Exclude
	}
	if env.LogLevel != "" {
		s.LogLevel = env.LogLevel
	}
}

// SetLines replaces the line filter. A malformed spec is reported as a
// ConfigurationError wrapping the ranges.ParseError.
func (s *Settings) SetLines(spec string) error {
	rs, err := ranges.Parse(spec)
	if err != nil {
		return &ConfigurationError{Path: s.Path, Err: err}
	}
	s.Lines = spec
	s.Ranges = rs
	return nil
}

// Tree returns the effective settings as nested maps, keyed by section.
func (s *Settings) Tree() map[string]any {
	tree := map[string]any{}

	keys := make([]string, 0, len(s.Raw))
	for k := range s.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tree = dict.AddBranch(tree, strings.Split(k, "."), s.Raw[k])
	}

	tree = dict.AddBranch(tree, []string{sectionRules, keyRulesDir}, s.RulesDir)
	tree = dict.AddBranch(tree, []string{sectionRules, keyStandards}, s.Standards)
	tree = dict.AddBranch(tree, []string{sectionRules, keyLines}, s.Ranges.String())
	tree = dict.AddBranch(tree, []string{sectionRules, keyExclude}, s.Exclude)
	tree = dict.AddBranch(tree, []string{sectionLogging, keyLevel}, s.LogLevel)
	return tree
}

func rawKey(section, key string) string {
	if section == ini.DefaultSection {
		return key
	}
	return section + "." + key
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
