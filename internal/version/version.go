// Package version selects the newest of a set of dotted version strings.
package version

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Default is returned by Latest when no usable version is given.
const Default = "0.1"

// Latest returns the greatest version, comparing segment by segment as
// numbers so that "1.10" wins over "1.9". Empty or unparsable entries are
// skipped. The winner is returned in its original spelling.
func Latest(versions ...string) string {
	var best *goversion.Version
	for _, raw := range versions {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		v, err := goversion.NewVersion(raw)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return Default
	}
	return best.Original()
}

// Compare returns -1, 0 or 1 depending on whether a is older, equal or newer
// than b.
func Compare(a, b string) (int, error) {
	va, err := goversion.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", a, err)
	}
	vb, err := goversion.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}

// Valid reports whether s parses as a version.
func Valid(s string) bool {
	_, err := goversion.NewVersion(s)
	return err == nil
}
