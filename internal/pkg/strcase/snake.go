package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a string to snake_case. Acronym runs are kept
// together, so "HTTPServer" becomes "http_server" and "userID" becomes
// "user_id".
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]

			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				// lower/digit to upper, e.g. userID
				b.WriteRune('_')
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// acronym run ending before a word, e.g. HTTPServer
				b.WriteRune('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
