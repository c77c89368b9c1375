// Package naming derives concrete names for resolved definitions.
package naming

import (
	"strings"
	"unicode"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Render substitutes every {{key}} placeholder in tmpl with bindings[key].
// Whitespace inside the braces is ignored, so {{ key }} resolves the same way.
// Placeholders without a binding are left in the output verbatim.
func Render(tmpl string, bindings map[string]string) string {
	var result strings.Builder
	rest := tmpl

	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			break
		}

		end := strings.Index(rest[start+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += start + len(openDelim)

		result.WriteString(rest[:start])

		key := strings.TrimSpace(rest[start+len(openDelim) : end])
		if val, ok := bindings[key]; ok && key != "" {
			result.WriteString(val)
		} else {
			result.WriteString(rest[start : end+len(closeDelim)])
		}

		rest = rest[end+len(closeDelim):]
	}

	result.WriteString(rest)

	return result.String()
}

// ToKebabCase converts camelCase, PascalCase, snake_case and dotted names to kebab-case.
func ToKebabCase(s string) string {
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '.' || r == ' ':
			result.WriteRune('-')
		case i > 0 && unicode.IsUpper(r):
			// split before an upper-case letter that starts a new word
			if unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteRune('-')
			}
			result.WriteRune(unicode.ToLower(r))
		default:
			result.WriteRune(unicode.ToLower(r))
		}
	}
	return result.String()
}

func KebabToTitleCase(s string) string {
	var result strings.Builder
	capitalize := true

	for _, r := range s {
		switch {
		case r == '-':
			result.WriteRune(' ')
			capitalize = true
		case capitalize:
			result.WriteRune(unicode.ToUpper(r))
			capitalize = false
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
