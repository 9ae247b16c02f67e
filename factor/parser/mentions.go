package parser

import (
	"strings"

	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/internal/util"
)

// vocabulary holds words that are never entity names on their own:
// lexicon words plus single-word condition aliases.
type vocabulary map[string]bool

func newVocabulary(cat *catalog.Catalog) vocabulary {
	v := vocabulary{}
	add := func(phrases ...string) {
		for _, p := range phrases {
			for _, w := range strings.Fields(strings.ToLower(p)) {
				v[w] = true
			}
		}
	}
	for w := range lexicon.Stopwords {
		v[w] = true
	}
	for w := range lexicon.NumberWords {
		v[w] = true
	}
	add(lexicon.NegationTerms...)
	add(lexicon.ScopeModifiers...)
	for _, op := range lexicon.CompoundOperators {
		add(op.Phrases...)
	}
	for _, cp := range lexicon.ComparatorPhrases {
		add(cp.Phrase)
	}
	for _, vocab := range [][]lexicon.Vocabulary{lexicon.TimeFrames, lexicon.TimePositions} {
		for _, entry := range vocab {
			add(entry.Key)
			add(entry.Aliases...)
		}
	}
	for _, p := range cat.ConditionPhrases() {
		add(p.Phrase)
	}
	return v
}

func (v vocabulary) has(t Token) bool {
	return v[t.Lower()]
}

// mentionRules decide which tokens may be names for one backend
type mentionRules struct {
	// single accepts a one-token alias match ("Chiefs", "Heat")
	single func(t Token, lowercaseInput bool) bool
	// nameLike marks tokens that may belong to an unmatched name for fuzzy lookup
	nameLike func(t Token) bool
	method   Method
}

// scanMentions finds entity names and aliases in a clause, longest phrase
// first, then fuzzy-matches leftover runs of name-like tokens.
func scanMentions(cat *catalog.Catalog, threshold float64, clause string, tokens []Token, rules mentionRules) []Mention {
	var out []Mention
	var run []Token
	lowercaseInput := !hasUpper(clause)

	flush := func() {
		if len(run) > 0 {
			out = append(out, fuzzyMentions(cat, threshold, clause, run, rules.method)...)
			run = nil
		}
	}

	for i := 0; i < len(tokens); {
		matched := false
		maxN := cat.MaxAliasWords()
		if rest := len(tokens) - i; rest < maxN {
			maxN = rest
		}
		for n := maxN; n >= 1; n-- {
			window := tokens[i : i+n]
			entries := cat.LookupAlias(joinTokens(window))
			if len(entries) == 0 {
				continue
			}
			if n == 1 && !rules.single(window[0], lowercaseInput) {
				continue
			}
			flush()
			out = append(out, Mention{
				Text:       clause[window[0].Start:window[n-1].End],
				Start:      window[0].Start,
				End:        window[n-1].End,
				Candidates: entries,
				Score:      1.0,
				Method:     rules.method,
			})
			i += n
			matched = true
			break
		}
		if matched {
			continue
		}
		if rules.nameLike(tokens[i]) {
			run = append(run, tokens[i])
		} else {
			flush()
		}
		i++
	}
	flush()
	return out
}

// fuzzyMentions resolves a run of name-like tokens by similarity, first as
// a whole and then token by token.
func fuzzyMentions(cat *catalog.Catalog, threshold float64, clause string, run []Token, method Method) []Mention {
	whole := mentionFor(cat, threshold, clause, run, method)
	if whole != nil || len(run) == 1 {
		if whole == nil {
			return nil
		}
		return []Mention{*whole}
	}
	var out []Mention
	for i := range run {
		if m := mentionFor(cat, threshold, clause, run[i:i+1], method); m != nil {
			out = append(out, *m)
		}
	}
	return out
}

func mentionFor(cat *catalog.Catalog, threshold float64, clause string, window []Token, method Method) *Mention {
	match := cat.FindEntity(joinTokens(window), "", threshold)
	if !match.Found() {
		return nil
	}
	for _, e := range cat.LookupAlias(match.Name) {
		if e.ID == match.ID && e.Kind == match.Type {
			return &Mention{
				Text:       clause[window[0].Start:window[len(window)-1].End],
				Start:      window[0].Start,
				End:        window[len(window)-1].End,
				Candidates: []catalog.Entry{e},
				Score:      match.Score,
				Method:     method,
			}
		}
	}
	return nil
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Lower()
	}
	return strings.Join(parts, " ")
}

func patternMentionRules(vocab vocabulary) mentionRules {
	return mentionRules{
		single: func(t Token, lowercaseInput bool) bool {
			return !vocab.has(t) && (lowercaseInput || util.IsCapitalized(t.Text))
		},
		nameLike: func(t Token) bool {
			_, _, isNumber := parseNumber(t.Text)
			return !isNumber && !vocab.has(t) && util.IsCapitalized(t.Text)
		},
		method: MethodPattern,
	}
}

func syntaxMentionRules(vocab vocabulary) mentionRules {
	return mentionRules{
		single: func(t Token, lowercaseInput bool) bool {
			return !vocab.has(t) && (lowercaseInput || t.IsProperNoun() || util.IsCapitalized(t.Text))
		},
		nameLike: func(t Token) bool {
			return t.IsProperNoun() && !vocab.has(t)
		},
		method: MethodSyntax,
	}
}
