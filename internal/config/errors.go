package config

import "fmt"

// ConfigurationError is returned when settings or the standards directory
// cannot be used. Commands treat it as fatal.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Errorf builds a ConfigurationError for path.
func Errorf(path, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Path: path, Err: fmt.Errorf(format, args...)}
}
