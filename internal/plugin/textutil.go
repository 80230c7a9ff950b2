package plugin

import (
	"regexp"
	"strings"
)

// ReplaceWholeWord replaces every whole-word occurrence of old with new in
// s, using a word boundary so "oldName2" is left untouched when renaming
// "oldName". Shared by the per-language import rewriters, which all operate
// on source text line by line rather than a full parse.
func ReplaceWholeWord(s, old, new string) (string, int) {
	if old == "" {
		return s, 0
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`)
	count := 0
	result := re.ReplaceAllStringFunc(s, func(m string) string {
		count++
		return new
	})
	return result, count
}

// ReplaceSubstring replaces every literal occurrence of old with new,
// reporting how many replacements were made. Used for path-like strings
// that aren't identifiers (module paths, relative import specifiers).
func ReplaceSubstring(s, old, new string) (string, int) {
	if old == "" {
		return s, 0
	}
	count := strings.Count(s, old)
	if count == 0 {
		return s, 0
	}
	return strings.ReplaceAll(s, old, new), count
}
