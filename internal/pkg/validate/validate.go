package validate

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds user and project identifiers.
const MaxIDLength = 128

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ID reports whether value can be used as a user or project identifier.
// "|" is reserved as the pair key separator.
func ID(value string) bool {
	if !Required(value) || len(value) > MaxIDLength {
		return false
	}
	return !strings.ContainsFunc(value, func(r rune) bool {
		return r == '|' || unicode.IsControl(r)
	})
}
