package domain

import (
	"strings"
	"unicode"
)

// NormalizeKey derives a variable key from a placeholder label:
//   - converts to lowercase and trims surrounding whitespace
//   - replaces every run of non-word characters with a single underscore
//   - strips leading and trailing underscores
//
// Word characters are Unicode letters, digits and '_', so accented
// labels keep their letters ("Prénom" -> "prénom").
func NormalizeKey(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(label))
	prevSep := false
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			prevSep = false
			continue
		}
		if !prevSep {
			b.WriteByte('_')
			prevSep = true
		}
	}

	key := b.String()
	// Collapse underscore runs that came from the label itself.
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return strings.Trim(key, "_")
}
