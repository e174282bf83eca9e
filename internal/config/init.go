package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// WriteDefault creates a settings file at path with every known key.
// An existing file is overwritten.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath
	}

	file := ini.Empty()

	rules, err := file.NewSection(sectionRules)
	if err != nil {
		return err
	}
	rules.Comment = "standards directory, version cap and line filter"
	for _, kv := range [][2]string{
		{keyRulesDir, ""},
		{keyStandards, ""},
		{keyLines, ""},
		{keyExclude, ""},
	} {
		if _, err := rules.NewKey(kv[0], kv[1]); err != nil {
			return err
		}
	}

	logging, err := file.NewSection(sectionLogging)
	if err != nil {
		return err
	}
	if _, err := logging.NewKey(keyLevel, defaultLogLevel); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := file.WriteTo(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
