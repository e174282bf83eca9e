package types

import (
	"fmt"
	"go/token"
	"strings"
)

// Issue represents a lint issue found in a YAML file.
type Issue struct {
	Rule       string
	Standard   string
	Version    string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Severity   Severity
	Start      token.Position
	End        token.Position
}

// Severity of an issue. The zero value is SeverityError.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

var severityNames = map[Severity]string{
	SeverityError:   "ERROR",
	SeverityWarning: "WARNING",
	SeverityInfo:    "INFO",
	SeverityOff:     "OFF",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity accepts the names printed by String, case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for sev, n := range severityNames {
		if n == upper {
			return sev, nil
		}
	}
	return SeverityError, fmt.Errorf("unknown severity %q", name)
}

func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *Severity) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ConfigRule overrides the defaults of one rule in the standards manifest.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}
