package linker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reservedCharRegex  = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	reservedNamesRegex = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[1-9]|lpt[1-9])$`)
)

const maxSafeNameRunes = 100

// SafeName converts an arbitrary filesystem basename into one containing
// only `[A-Za-z0-9._-]`-safe characters, folded to lowercase, capped at
// maxSafeNameRunes runes, and never colliding with a reserved Windows
// device name.
func SafeName(name string) string {
	lower := strings.ToLower(name)
	replaced := reservedCharRegex.ReplaceAllString(lower, "_")

	if reservedNamesRegex.MatchString(replaced) {
		replaced = "_" + replaced + "_"
	}

	if utf8.RuneCountInString(replaced) > maxSafeNameRunes {
		runes := []rune(replaced)
		replaced = string(runes[:maxSafeNameRunes])
	}
	return replaced
}
