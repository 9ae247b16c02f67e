package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/factor/types"
)

const (
	defaultConditionMinScore = 0.3
	defaultFuzzyThreshold    = 0.75

	// comparatorWindow is how many tokens may sit between a comparator
	// phrase and its number ("25 points or more")
	comparatorWindow = 2
	// fuzzyNumberWindow bounds the token distance between a fuzzy-matched
	// condition word and its number
	fuzzyNumberWindow = 3

	keywordConfidenceBase   = 0.6
	keywordConfidenceWeight = 0.3
	fuzzyConfidenceBase     = 0.2
	fuzzyConfidenceWeight   = 0.5
	placeholderConfidence   = 0.3
)

// conditionExtractor turns one clause into one FactorCondition
type conditionExtractor struct {
	cat            *catalog.Catalog
	minScore       float64
	fuzzyThreshold float64
}

// number is a numeric token that may be a condition threshold
type number struct {
	value float64
	plus  bool
	index int // token index
	span  Span
}

type keywordMatch struct {
	phrase catalog.ConditionPhrase
	score  float64
	span   Span
}

// extract builds the clause's condition. ok is false when the clause has
// no words at all.
func (x conditionExtractor) extract(clause string, tokens []Token, mentions []Mention, tf TimeFrameResult) (types.FactorCondition, bool) {
	if len(tokens) == 0 {
		return types.FactorCondition{}, false
	}

	numbers := thresholdNumbers(clause, tokens, mentions, tf)

	removed := make([]Span, 0, len(mentions)+len(numbers)+len(tf.Spans))
	for _, m := range mentions {
		removed = append(removed, Span{m.Start, m.End})
	}
	for _, n := range numbers {
		removed = append(removed, n.span)
	}
	comparators := comparatorSpans(clause)
	removed = append(removed, comparators...)
	removed = append(removed, tf.Spans...)
	residual := mask(clause, removed)

	cond := types.NewCondition()

	if kw, ok := x.bestKeyword(residual); ok {
		cond.Text = kw.phrase.Condition.Name
		cond.Type = kw.phrase.Condition.Type
		cond.Confidence = keywordConfidenceBase + keywordConfidenceWeight*kw.score
		if n, found := nearestBySpan(numbers, kw.span); found {
			cond.Value = n.value
			cond.ComparisonType = comparatorFor(clause, tokens, n, comparators)
		}
		return cond, true
	}

	if c, sim, idx, ok := x.fuzzyToken(tokens, removed); ok {
		cond.Text = c.Name
		cond.Type = c.Type
		cond.Confidence = fuzzyConfidenceBase + fuzzyConfidenceWeight*sim
		if n, found := nearestByToken(numbers, idx, fuzzyNumberWindow); found {
			cond.Value = n.value
			cond.ComparisonType = comparatorFor(clause, tokens, n, comparators)
		}
		return cond, true
	}

	cond.Confidence = placeholderConfidence
	if len(numbers) > 0 {
		cond.Value = numbers[0].value
		cond.ComparisonType = comparatorFor(clause, tokens, numbers[0], comparators)
	}
	return cond, true
}

// thresholdNumbers lists numeric tokens that are not time values and not
// part of an entity name.
func thresholdNumbers(clause string, tokens []Token, mentions []Mention, tf TimeFrameResult) []number {
	var excluded []Span
	if tf.ValueSpan != nil {
		excluded = append(excluded, *tf.ValueSpan)
	}
	for _, m := range mentions {
		excluded = append(excluded, Span{m.Start, m.End})
	}

	var out []number
	for i, t := range tokens {
		v, plus, ok := numberAt(clause, t)
		if !ok || overlaps(excluded, t.Start, t.End) {
			continue
		}
		end := t.End
		if plus && !strings.HasSuffix(t.Text, "+") {
			end++
		}
		out = append(out, number{value: v, plus: plus, index: i, span: Span{t.Start, end}})
	}
	return out
}

// bestKeyword scores every condition alias found in residual by
// alias length / content length. Ties go to more words, then catalog order.
func (x conditionExtractor) bestKeyword(residual string) (keywordMatch, bool) {
	content := contentText(residual)
	contentLen := utf8.RuneCountInString(content)
	if contentLen == 0 {
		return keywordMatch{}, false
	}

	var best keywordMatch
	found := false
	for _, p := range x.cat.ConditionPhrases() {
		locs := p.FindAllIndex(residual)
		if len(locs) == 0 {
			continue
		}
		score := float64(utf8.RuneCountInString(p.Phrase)) / float64(contentLen)
		if score > 1 {
			score = 1
		}
		if !found || score > best.score || (score == best.score && p.Words > best.phrase.Words) {
			best = keywordMatch{phrase: p, score: score, span: Span{locs[0][0], locs[0][1]}}
			found = true
		}
	}
	if !found || best.score < x.minScore {
		return keywordMatch{}, false
	}
	return best, true
}

// contentText joins residual words that carry meaning: stopwords and
// negation terms are dropped.
func contentText(residual string) string {
	var words []string
	for _, t := range tokenize(residual) {
		lower := t.Lower()
		if lexicon.Stopwords[lower] || lexicon.IsNegationTerm(lower) || strings.HasSuffix(lower, "n't") {
			continue
		}
		words = append(words, lower)
	}
	return strings.Join(words, " ")
}

// fuzzyToken fuzzy-matches content tokens against the condition
// vocabulary. Tagged tokens must be nouns or verbs.
func (x conditionExtractor) fuzzyToken(tokens []Token, removed []Span) (catalog.Condition, float64, int, bool) {
	var best catalog.Match
	bestIdx := -1
	for i, t := range tokens {
		if overlaps(removed, t.Start, t.End) {
			continue
		}
		lower := t.Lower()
		if lexicon.Stopwords[lower] || lexicon.IsNegationTerm(lower) {
			continue
		}
		if t.Tagged() && !t.IsNoun() && !t.IsVerb() {
			continue
		}
		m := x.cat.FindEntity(lower, catalog.KindCondition, x.fuzzyThreshold)
		if m.Found() && m.Score > best.Score {
			best, bestIdx = m, i
		}
	}
	if bestIdx < 0 {
		return catalog.Condition{}, 0, -1, false
	}
	c, ok := x.cat.ConditionByID(best.ID)
	return c, best.Score, bestIdx, ok
}

func nearestBySpan(numbers []number, span Span) (number, bool) {
	bestDist := -1
	var best number
	for _, n := range numbers {
		var d int
		switch {
		case n.span.End <= span.Start:
			d = span.Start - n.span.End
		case n.span.Start >= span.End:
			d = n.span.Start - span.End
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	return best, bestDist >= 0
}

func nearestByToken(numbers []number, idx, window int) (number, bool) {
	bestDist := window + 1
	var best number
	for _, n := range numbers {
		d := n.index - idx
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = n, d
		}
	}
	return best, bestDist <= window
}

// comparatorFor picks the comparator governing n: a trailing "+", then the
// closest phrase just before the number, then one just after it. Defaults
// to "=".
func comparatorFor(clause string, tokens []Token, n number, comparators []Span) types.Comparison {
	if n.plus {
		return types.GreaterOrEqual
	}
	var before, after *Span
	for i := range comparators {
		c := &comparators[i]
		if c.End <= n.span.Start && tokensBetween(tokens, c.End, n.span.Start) <= comparatorWindow {
			before = c
		}
		if after == nil && c.Start >= n.span.End && tokensBetween(tokens, n.span.End, c.Start) <= comparatorWindow {
			after = c
		}
	}
	for _, c := range []*Span{before, after} {
		if c == nil {
			continue
		}
		if cmp, ok := lexicon.LookupComparator(clause[c.Start:c.End]); ok {
			return cmp
		}
	}
	return types.Equal
}

func tokensBetween(tokens []Token, start, end int) int {
	n := 0
	for _, t := range tokens {
		if t.Start >= start && t.End <= end {
			n++
		}
	}
	return n
}
