package text

import "unicode"

// CountSpaces returns the number of leading and trailing whitespace runes in s.
// A string made only of whitespace counts every rune on both sides.
func CountSpaces(s string) (leading, trailing int) {
	runes := []rune(s)

	for _, r := range runes {
		if !unicode.IsSpace(r) {
			break
		}
		leading++
	}

	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsSpace(runes[i]) {
			break
		}
		trailing++
	}

	return leading, trailing
}

// Indent returns the leading whitespace of s.
func Indent(s string) string {
	leading, _ := CountSpaces(s)
	return string([]rune(s)[:leading])
}
