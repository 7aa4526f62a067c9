package util

import (
	"errors"
	"strings"
)

// SanitizeFileName replaces path separators and drops control characters.
// Dots inside a name are kept; only names that are nothing but "." or ".."
// are rejected.
func SanitizeFileName(name string) (string, error) {
	s := strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	s = strings.TrimSpace(stripControl(s))
	switch s {
	case "", ".", "..":
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// SanitizeText trims surrounding whitespace and drops control characters.
func SanitizeText(s string) string {
	return strings.TrimSpace(stripControl(s))
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
