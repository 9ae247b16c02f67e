package parser

import (
	"github.com/teranos/qfactor/factor/catalog"
)

// PatternBackend uses word-boundary regular expressions only. It needs no
// model and is always available.
type PatternBackend struct {
	cat       *catalog.Catalog
	threshold float64
	rules     mentionRules
}

var _ LinguisticBackend = (*PatternBackend)(nil)

func NewPatternBackend(cat *catalog.Catalog, threshold float64) *PatternBackend {
	if threshold <= 0 {
		threshold = catalog.DefaultThreshold
	}
	return &PatternBackend{
		cat:       cat,
		threshold: threshold,
		rules:     patternMentionRules(newVocabulary(cat)),
	}
}

func (b *PatternBackend) Kind() BackendKind  { return BackendPattern }
func (b *PatternBackend) HighFidelity() bool { return false }

func (b *PatternBackend) Split(text string) CompoundResult {
	return splitPattern(text)
}

func (b *PatternBackend) DetectNegation(clause string) NegationResult {
	return detectNegationPattern(clause)
}

func (b *PatternBackend) DetectTimeFrame(clause string) TimeFrameResult {
	return detectTime(clause, tokenize(clause), false)
}

func (b *PatternBackend) Tokens(clause string) []Token {
	return tokenize(clause)
}

func (b *PatternBackend) ResolveEntities(clause string) []Mention {
	return scanMentions(b.cat, b.threshold, clause, tokenize(clause), b.rules)
}
