package parser

import (
	"strings"

	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/factor/types"
)

// Tier confidences for negation detection
const (
	syntaxNegationConfidence          = 0.9
	syntaxNegationModifiedConfidence  = 0.7
	patternNegationConfidence         = 0.7
	patternNegationModifiedConfidence = 0.6

	// scopeWindow is how many tokens after a negation term the pattern
	// tier assumes it governs
	scopeWindow = 4

	equalNegationPenalty = 0.3
	negationPenalty      = 0.1
)

// negationCandidate finds the earliest negation term once comparator
// phrases ("no more than") are masked out.
func negationCandidate(clause string) (term string, start, end int, ok bool) {
	return lexicon.FindNegation(mask(clause, comparatorSpans(clause)))
}

// detectNegationPattern is the word-boundary tier
func detectNegationPattern(clause string) NegationResult {
	if strings.TrimSpace(clause) == "" {
		return NegationResult{Method: MethodNone}
	}
	_, start, end, ok := negationCandidate(clause)
	if !ok {
		return NegationResult{Confidence: patternNegationConfidence, Method: MethodPattern}
	}

	confidence := patternNegationConfidence
	if lexicon.HasScopeModifier(clause) {
		confidence = patternNegationModifiedConfidence
	}
	return NegationResult{
		IsNegated:  true,
		Confidence: confidence,
		Scope:      windowScope(clause, start, end),
		Term:       strings.ToLower(clause[start:end]),
		Method:     MethodPattern,
	}
}

// windowScope returns the negation term plus the next scopeWindow tokens
func windowScope(clause string, start, end int) string {
	stop := end
	count := 0
	for _, t := range tokenize(clause[end:]) {
		if count == scopeWindow {
			break
		}
		stop = end + t.End
		count++
	}
	return strings.TrimSpace(clause[start:stop])
}

// modifierScope returns text from the negation term up to the next scope
// modifier or the end of the clause.
func modifierScope(clause string, start, end int) string {
	stop := len(clause)
	rest := clause[end:]
	for _, m := range lexicon.ScopeModifiers {
		if loc := lexicon.Regexp(m).FindStringIndex(rest); loc != nil && end+loc[0] < stop {
			stop = end + loc[0]
		}
	}
	return strings.TrimSpace(clause[start:stop])
}

// ApplyNegation inverts the comparator of every condition. Equality has no
// clean complement, so it keeps "=" and loses more confidence.
func ApplyNegation(conds []types.FactorCondition) {
	for i := range conds {
		c := &conds[i]
		if c.ComparisonType == types.Equal {
			c.Confidence -= equalNegationPenalty
		} else {
			c.ComparisonType = c.ComparisonType.Invert()
			c.Confidence -= negationPenalty
		}
		if c.Confidence < 0 {
			c.Confidence = 0
		}
		c.IsNegated = true
	}
}
