package schema

import (
	"strings"
	"unicode"
)

// Humanize turns a column key into a display label.
// "total_revenue" → "Total Revenue", "unitPrice" → "Unit Price".
// Headers that already contain spaces are only trimmed.
func Humanize(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, " ") {
		return s
	}

	var b strings.Builder
	prev := rune(0)
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// SnakeCase converts "Column Name" or "columnName" → "column_name".
func SnakeCase(s string) string {
	var result strings.Builder
	prev := rune(0)
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			result.WriteRune('_')
		}
		result.WriteRune(r)
		prev = r
	}

	out := strings.ToLower(result.String())
	out = strings.NewReplacer(" ", "_", "-", "_").Replace(out)
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}
