package util

import (
	"fmt"
	"strings"
	"unicode"
)

var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// ValidateFilename checks that name is usable as a bare filename exactly
// as given. Target names from the mapping CSV are applied verbatim, so
// anything that would require rewriting is rejected rather than fixed up.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("filename cannot be current or parent directory")
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("filename cannot contain path separators")
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("filename contains null bytes")
	}

	for _, char := range name {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			return fmt.Errorf("filename contains control or invisible characters")
		}
	}

	if len([]rune(name)) > 255 {
		return fmt.Errorf("filename exceeds 255 characters")
	}

	stem := name
	if idx := strings.Index(name, "."); idx >= 0 {
		stem = name[:idx]
	}
	if _, reserved := windowsReservedNames[strings.ToUpper(stem)]; reserved {
		return fmt.Errorf("filename %q is reserved", name)
	}

	return nil
}

// isInvisibleUnicode reports zero-width and formatting characters that
// render invisibly in file listings.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F',
		'\u2060', '\uFEFF', '\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
