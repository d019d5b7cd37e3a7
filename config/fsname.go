package config

import (
	"os"
	"strings"
	"unicode"
)

const badFileName = "_bad_file_name_"

// CleanFileName removes characters which cannot be used in output file name
// on this platform. LDraw sub-file separator (backslash) is never kept,
// callers split names on it before cleaning. Leading dots are dropped so
// output never becomes hidden or relative.
func CleanFileName(in string) string {
	forbidden := forbiddenNameRunes + `\` + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(forbidden, sym) {
			return -1
		}
		return sym
	}, in), ".")
	if len(out) == 0 {
		out = badFileName
	}
	return out
}
