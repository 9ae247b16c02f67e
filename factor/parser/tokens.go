package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/teranos/qfactor/factor/lexicon"
)

// Token is one word of a clause with its byte offsets. Tag is a Penn
// Treebank part-of-speech tag, empty when the backend cannot tag.
type Token struct {
	Text  string
	Tag   string
	Start int
	End   int
}

func (t Token) IsNoun() bool       { return strings.HasPrefix(t.Tag, "NN") }
func (t Token) IsProperNoun() bool { return t.Tag == "NNP" || t.Tag == "NNPS" }
func (t Token) IsVerb() bool       { return strings.HasPrefix(t.Tag, "VB") }
func (t Token) Tagged() bool       { return t.Tag != "" }

// Lower returns the token lowercased with a trailing possessive removed
func (t Token) Lower() string {
	s := strings.ToLower(t.Text)
	s = strings.TrimSuffix(s, "'s")
	return strings.TrimSuffix(s, "’s")
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’.,\-][\p{L}\p{N}]+)*\+?`)

// tokenize splits text into word tokens. "doesn't", "300+", "1,000" and
// "Gilgeous-Alexander" each stay one token.
func tokenize(text string) []Token {
	locs := wordRe.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return tokens
}

// parseNumber reads a numeric token: digits, "300+", "1,000", "25.5" or a
// number word. plus reports a trailing "+".
func parseNumber(token string) (value float64, plus bool, ok bool) {
	s := strings.ToLower(token)
	if strings.HasSuffix(s, "+") {
		plus = true
		s = strings.TrimSuffix(s, "+")
	}
	if v, found := lexicon.NumberWords[s]; found && !plus {
		return v, false, true
	}
	if s == "" || !unicode.IsDigit(rune(s[0])) {
		return 0, false, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false, false
	}
	return v, plus, true
}

// numberAt parses token t of clause as a number. A "+" directly after the
// token counts even when the tagger split it off.
func numberAt(clause string, t Token) (value float64, plus bool, ok bool) {
	value, plus, ok = parseNumber(t.Text)
	if ok && !plus && t.End < len(clause) && clause[t.End] == '+' {
		plus = true
	}
	return value, plus, ok
}

// overlaps reports whether [start, end) intersects any span
func overlaps(spans []Span, start, end int) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

// mask blanks out spans with spaces, keeping byte offsets stable
func mask(text string, spans []Span) string {
	if len(spans) == 0 {
		return text
	}
	b := []byte(text)
	for _, s := range spans {
		for i := s.Start; i < s.End && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// comparatorSpans locates comparator phrases like "no more than"
func comparatorSpans(text string) []Span {
	var spans []Span
	for _, loc := range lexicon.ComparatorRegexp().FindAllStringIndex(text, -1) {
		spans = append(spans, Span{loc[0], loc[1]})
	}
	return spans
}

// tokenIndexAt returns the index of the token covering byte offset pos, or -1
func tokenIndexAt(tokens []Token, pos int) int {
	for i, t := range tokens {
		if pos >= t.Start && pos < t.End {
			return i
		}
	}
	return -1
}

// hasUpper reports whether text contains any upper-case letter
func hasUpper(text string) bool {
	for _, r := range text {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
