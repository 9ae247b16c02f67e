// Package lexicon holds the immutable vocabularies the factor parser matches
// against: negation terms, scope modifiers, compound conjunctions, time-frame
// words, comparator phrases and stopwords.
//
// Tables are package-level and never mutated after init. Ordered tables are
// slices because their order is the match priority.
package lexicon

import (
	"regexp"
	"sort"
	"strings"

	"github.com/teranos/qfactor/factor/types"
)

// NegationTerms mark a clause as negated
var NegationTerms = []string{
	"not", "n't", "don't", "doesn't", "won't", "isn't", "aren't", "didn't",
	"no", "never", "nobody", "none", "nothing", "nowhere", "neither", "nor",
	"fails to", "unable to", "can't", "cannot", "couldn't", "shouldn't",
	"without", "unlikely", "prevent", "stops", "lack", "lacks", "fails",
	"miss", "misses", "avoided", "avoids", "denied", "denies",
}

// ScopeModifiers may restrict or invert the reach of a negation
var ScopeModifiers = []string{
	"but", "however", "although", "though", "except", "despite", "in spite of",
	"nonetheless", "nevertheless", "regardless", "notwithstanding", "yet",
	"still", "even so", "all the same",
}

// OperatorPhrases is one operator's conjunction vocabulary
type OperatorPhrases struct {
	Operator types.Operator
	Phrases  []string
}

// CompoundOperators in fallback priority order: AND, OR, BUT, IF
var CompoundOperators = []OperatorPhrases{
	{types.OperatorAnd, []string{"and", "while", "as well as", "along with", "in addition to", "plus", "also", "together with"}},
	{types.OperatorOr, []string{"or", "either", "alternatively", "otherwise"}},
	{types.OperatorBut, []string{"but", "however", "yet", "although", "despite"}},
	{types.OperatorIf, []string{"if", "when", "provided that", "assuming", "in case"}},
}

// ComparatorPhrase maps an English phrase to a comparator
type ComparatorPhrase struct {
	Phrase     string
	Comparison types.Comparison
}

// ComparatorPhrases sorted longest first at init so "no more than" is tried
// before "more than".
var ComparatorPhrases = []ComparatorPhrase{
	{"more than", types.GreaterThan},
	{"greater than", types.GreaterThan},
	{"over", types.GreaterThan},
	{"above", types.GreaterThan},
	{"exceeds", types.GreaterThan},
	{"exceed", types.GreaterThan},
	{"beyond", types.GreaterThan},
	{"better than", types.GreaterThan},
	{"at least", types.GreaterOrEqual},
	{"or more", types.GreaterOrEqual},
	{"no less than", types.GreaterOrEqual},
	{"no fewer than", types.GreaterOrEqual},
	{"minimum of", types.GreaterOrEqual},
	{"a minimum of", types.GreaterOrEqual},
	{"less than", types.LessThan},
	{"fewer than", types.LessThan},
	{"under", types.LessThan},
	{"below", types.LessThan},
	{"at most", types.LessOrEqual},
	{"or less", types.LessOrEqual},
	{"or fewer", types.LessOrEqual},
	{"no more than", types.LessOrEqual},
	{"maximum of", types.LessOrEqual},
	{"a maximum of", types.LessOrEqual},
	{"up to", types.LessOrEqual},
	{"exactly", types.Equal},
	{"equal to", types.Equal},
	{"equals", types.Equal},
	{"precisely", types.Equal},
}

// NumberWords are spelled-out integers accepted as thresholds
var NumberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "hundred": 100,
}

// Stopwords are ignored when measuring how much of a clause an alias covers
var Stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "from": true,
	"his": true, "her": true, "their": true, "its": true, "this": true,
	"that": true, "is": true, "are": true, "be": true, "will": true,
	"gets": true, "get": true, "has": true, "have": true, "had": true,
	"records": true, "record": true, "put": true, "puts": true, "up": true,
	"still": true, "game": true, "games": true, "s": true, "than": true,
	"does": true, "do": true, "did": true, "team": true, "player": true,
}

var (
	comparatorRe *regexp.Regexp
	compiled     = map[string]*regexp.Regexp{}
)

func init() {
	sort.SliceStable(ComparatorPhrases, func(i, j int) bool {
		return len(ComparatorPhrases[i].Phrase) > len(ComparatorPhrases[j].Phrase)
	})
	phrases := make([]string, len(ComparatorPhrases))
	for i, cp := range ComparatorPhrases {
		phrases[i] = regexp.QuoteMeta(cp.Phrase)
	}
	comparatorRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(phrases, "|") + `)\b`)

	for _, term := range NegationTerms {
		compiled[term] = PhraseRegexp(term)
	}
	for _, term := range ScopeModifiers {
		compiled[term] = PhraseRegexp(term)
	}
	for _, op := range CompoundOperators {
		for _, p := range op.Phrases {
			compiled[p] = PhraseRegexp(p)
		}
	}
}

// PhraseRegexp compiles a case-insensitive whole-word matcher for phrase.
// Phrases starting with an apostrophe ("n't") attach to the preceding word.
func PhraseRegexp(phrase string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(phrase)
	quoted = strings.ReplaceAll(quoted, " ", `\s+`)
	if strings.HasPrefix(phrase, "n'") {
		return regexp.MustCompile(`(?i)` + quoted + `\b`)
	}
	return regexp.MustCompile(`(?i)\b` + quoted + `\b`)
}

// AliasRegexp is PhraseRegexp for catalog aliases: one article may sit
// between the words of a multi-word alias, so "beat the Bills by" matches
// "beat by" once the team name is masked.
func AliasRegexp(alias string) *regexp.Regexp {
	words := strings.Fields(alias)
	if len(words) < 2 || strings.HasPrefix(alias, "n'") {
		return PhraseRegexp(alias)
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+(?:(?:a|an|the)\s+)?`) + `\b`)
}

// Regexp returns the precompiled matcher for a vocabulary phrase, compiling
// on the fly for phrases outside the built-in tables.
func Regexp(phrase string) *regexp.Regexp {
	if re, ok := compiled[phrase]; ok {
		return re
	}
	return PhraseRegexp(phrase)
}

// ComparatorRegexp matches any comparator phrase, longest alternative first
func ComparatorRegexp() *regexp.Regexp {
	return comparatorRe
}

// LookupComparator maps a matched comparator phrase back to its comparison
func LookupComparator(phrase string) (types.Comparison, bool) {
	normalized := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	for _, cp := range ComparatorPhrases {
		if cp.Phrase == normalized {
			return cp.Comparison, true
		}
	}
	return "", false
}

// FindNegation returns the first negation term present in text and its span
func FindNegation(text string) (term string, start, end int, ok bool) {
	start = -1
	for _, t := range NegationTerms {
		loc := compiled[t].FindStringIndex(text)
		if loc == nil {
			continue
		}
		if start == -1 || loc[0] < start {
			term, start, end, ok = t, loc[0], loc[1], true
		}
	}
	return term, start, end, ok
}

// HasScopeModifier reports whether text contains any scope modifier
func HasScopeModifier(text string) bool {
	for _, m := range ScopeModifiers {
		if compiled[m].MatchString(text) {
			return true
		}
	}
	return false
}

// IsNegationTerm reports whether a single token is a negation term
func IsNegationTerm(token string) bool {
	lower := strings.ToLower(token)
	for _, t := range NegationTerms {
		if t == lower {
			return true
		}
	}
	return false
}

// OperatorFor classifies a conjunction phrase
func OperatorFor(phrase string) (types.Operator, bool) {
	lower := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	for _, op := range CompoundOperators {
		for _, p := range op.Phrases {
			if p == lower {
				return op.Operator, true
			}
		}
	}
	return types.OperatorNone, false
}
