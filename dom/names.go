package dom

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey returns the lookup key for page, group and document names. LDraw
// names are case-insensitive and may use either path separator.
func NameKey(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	// Caser keeps state, it must not be shared
	return cases.Fold().String(name)
}

// SameName compares two names the way LDraw does.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}
