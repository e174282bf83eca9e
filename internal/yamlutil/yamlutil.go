// Package yamlutil loads untrusted YAML text into a plain string-keyed map.
//
// SafeLoad never hides a syntax error: the caller receives a *DataFormatError
// and decides, through Load and a Policy, whether that is fatal.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result is the outcome of a successful load.
type Result struct {
	Data map[string]any
	// Empty is set when the text held no document at all (blank, comments
	// only, or an explicit null).
	Empty bool
}

// DataFormatError reports YAML that could not be turned into a mapping.
type DataFormatError struct {
	// Line is 1-based, or 0 when the decoder did not report one.
	Line int
	Err  error
}

func (e *DataFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed yaml at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed yaml: %v", e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

var lineRe = regexp.MustCompile(`line (\d+)`)

// SafeLoad parses text and returns its top-level mapping.
func SafeLoad(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Data: map[string]any{}, Empty: true}, nil
	}

	var doc any
	dec := yaml.NewDecoder(bytes.NewBufferString(text))
	if err := dec.Decode(&doc); err != nil {
		// comments only
		if errors.Is(err, io.EOF) {
			return Result{Data: map[string]any{}, Empty: true}, nil
		}
		return Result{}, &DataFormatError{Line: errorLine(err), Err: err}
	}

	switch v := doc.(type) {
	case nil:
		return Result{Data: map[string]any{}, Empty: true}, nil
	case map[string]any:
		return Result{Data: v}, nil
	case map[any]any:
		// non-string keys such as 1: or 2.5: are stringified
		data := make(map[string]any, len(v))
		for k, val := range v {
			data[fmt.Sprint(k)] = val
		}
		return Result{Data: data}, nil
	default:
		return Result{}, &DataFormatError{
			Err: fmt.Errorf("top-level value is %T, expected a mapping", doc),
		}
	}
}

// SafeLoadAll decodes every document of a stream without any shape check.
func SafeLoadAll(text string) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewBufferString(text))

	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataFormatError{Line: errorLine(err), Err: err}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func errorLine(err error) int {
	m := lineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
