package catalog

import (
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Comparator scores how alike two normalized strings are, in [0, 1]
type Comparator interface {
	Similarity(a, b string) float64
}

// EditDistance is the default comparator: 1 - levenshtein/maxLen
type EditDistance struct{}

func (EditDistance) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	score := 1.0 - float64(dist)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// ComparatorFunc adapts a function to Comparator
type ComparatorFunc func(a, b string) float64

func (f ComparatorFunc) Similarity(a, b string) float64 {
	return f(a, b)
}
