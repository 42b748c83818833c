package service

import (
	"strings"
	"unicode"
)

// NormalizeName lowercases and trims a catalog or user name. Names are unique
// on their normalized form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// validName rejects empty, whitespace-only and purely numeric names.
func validName(field, name string) (string, error) {
	n := NormalizeName(name)
	if n == "" {
		return "", newError(ErrValidation, "%s cannot be empty", field)
	}
	if isNumeric(n) {
		return "", newError(ErrValidation, "%s cannot be an integer value", field)
	}
	return n, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
