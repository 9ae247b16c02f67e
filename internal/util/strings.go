package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics and collapses runs of whitespace.
// "Kylian Mbappé " and "kylian  mbappe" normalize to the same string.
func Normalize(s string) string {
	return CollapseSpaces(strings.ToLower(FoldAccents(s)))
}

// FoldAccents removes combining marks after NFD decomposition.
// Returns s unchanged if the transform fails.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// CollapseSpaces trims s and replaces internal whitespace runs with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsCapitalized reports whether the first rune of s is an upper-case letter.
func IsCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
