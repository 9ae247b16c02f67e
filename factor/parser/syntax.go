package parser

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/logger"
)

const defaultTagCacheSize = 512

// SyntaxBackend tags clauses with a part-of-speech model and uses the tags
// to pick conjunction boundaries, negation tokens, time nouns and proper
// names. Any tagging failure answers from the embedded PatternBackend.
type SyntaxBackend struct {
	pattern *PatternBackend
	rules   mentionRules
	tags    *lru.Cache // clause -> []Token
	log     *zap.SugaredLogger

	// tagger is swappable in tests
	tagger func(text string) ([]prose.Token, error)
}

var _ LinguisticBackend = (*SyntaxBackend)(nil)

func NewSyntaxBackend(cat *catalog.Catalog, threshold float64, tagCacheSize int) (*SyntaxBackend, error) {
	if tagCacheSize <= 0 {
		tagCacheSize = defaultTagCacheSize
	}
	tags, err := lru.New(tagCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tag cache")
	}
	pattern := NewPatternBackend(cat, threshold)
	return &SyntaxBackend{
		pattern: pattern,
		rules:   syntaxMentionRules(newVocabulary(cat)),
		tags:    tags,
		log:     logger.ComponentLogger("parser.syntax"),
		tagger:  proseTag,
	}, nil
}

func (b *SyntaxBackend) Kind() BackendKind  { return BackendSyntax }
func (b *SyntaxBackend) HighFidelity() bool { return true }

var (
	proseModelOnce sync.Once
	proseModel     *prose.Model
)

// sharedProseModel loads the tagger weights once per process. Building a
// document without a model reloads them on every call.
func sharedProseModel() *prose.Model {
	proseModelOnce.Do(func() {
		proseModel = prose.ModelFromData("qfactor")
	})
	return proseModel
}

func proseTag(text string) (tokens []prose.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("tagger panic: %v", r)
		}
	}()
	doc, err := prose.NewDocument(text,
		prose.UsingModel(sharedProseModel()),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}
	return doc.Tokens(), nil
}

// tag returns word tokens with POS tags and byte offsets into clause
func (b *SyntaxBackend) tag(clause string) ([]Token, error) {
	if cached, ok := b.tags.Get(clause); ok {
		return cached.([]Token), nil
	}
	tagged, err := b.tagger(clause)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(tagged))
	cursor := 0
	for _, pt := range tagged {
		if !hasWordRune(pt.Text) {
			continue
		}
		idx := strings.Index(clause[cursor:], pt.Text)
		if idx < 0 {
			return nil, errors.Newf("token %q not found after offset %d", pt.Text, cursor)
		}
		start := cursor + idx
		tokens = append(tokens, Token{Text: pt.Text, Tag: pt.Tag, Start: start, End: start + len(pt.Text)})
		cursor = start + len(pt.Text)
	}
	b.tags.Add(clause, tokens)
	return tokens, nil
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func (b *SyntaxBackend) fallback(stage string, err error) *ParseError {
	b.log.Debugw("tagging failed, using pattern matching",
		logger.FieldOperation, stage,
		logger.FieldError, err)
	return NewParseError(ErrorKindBackendUnavailable, fmt.Sprintf("%s fell back to pattern matching", stage)).
		WithUnderlying(err)
}

// Split cuts at every conjunction the tagger does not read as a noun or
// finite verb. Multi-word phrases ("as well as") are matched on tokens.
func (b *SyntaxBackend) Split(text string) CompoundResult {
	tokens, err := b.tag(text)
	if err != nil {
		b.fallback("split", err)
		return b.pattern.Split(text)
	}

	protected := comparatorSpans(text)
	var cuts []boundary
	for i := 0; i < len(tokens); i++ {
		if overlaps(protected, tokens[i].Start, tokens[i].End) {
			continue
		}
		if n, op, ok := phraseAt(tokens, i); ok {
			cuts = append(cuts, boundary{Span{tokens[i].Start, tokens[i+n-1].End}, op})
			i += n - 1
			continue
		}
		op, ok := lexicon.OperatorFor(tokens[i].Text)
		if !ok || !conjunctionLike(tokens[i]) {
			continue
		}
		cuts = append(cuts, boundary{Span{tokens[i].Start, tokens[i].End}, op})
	}
	return splitAtBoundaries(text, cuts, MethodSyntax)
}

// phraseAt matches a multi-word operator phrase starting at token i
func phraseAt(tokens []Token, i int) (int, types.Operator, bool) {
	for _, op := range lexicon.CompoundOperators {
		for _, phrase := range op.Phrases {
			words := strings.Fields(phrase)
			if len(words) < 2 || i+len(words) > len(tokens) {
				continue
			}
			match := true
			for k, w := range words {
				if tokens[i+k].Lower() != w {
					match = false
					break
				}
			}
			if match {
				return len(words), op.Operator, true
			}
		}
	}
	return 0, "", false
}

func conjunctionLike(t Token) bool {
	switch {
	case t.IsNoun():
		return false
	case t.IsVerb():
		// "assuming" is tagged VBG
		return t.Tag == "VBG"
	}
	return true
}

// DetectNegation looks for negation tokens; contractions arrive split as
// "does" + "n't".
func (b *SyntaxBackend) DetectNegation(clause string) NegationResult {
	if strings.TrimSpace(clause) == "" {
		return NegationResult{Method: MethodNone}
	}
	tokens, err := b.tag(clause)
	if err != nil {
		res := b.pattern.DetectNegation(clause)
		res.Fallback = b.fallback("negation", err)
		return res
	}

	start, end, ok := syntaxNegation(clause, tokens)
	if !ok {
		return NegationResult{Confidence: syntaxNegationConfidence, Method: MethodSyntax}
	}
	confidence := syntaxNegationConfidence
	if lexicon.HasScopeModifier(clause) {
		confidence = syntaxNegationModifiedConfidence
	}
	return NegationResult{
		IsNegated:  true,
		Confidence: confidence,
		Scope:      modifierScope(clause, start, end),
		Term:       strings.ToLower(clause[start:end]),
		Method:     MethodSyntax,
	}
}

func syntaxNegation(clause string, tokens []Token) (start, end int, ok bool) {
	protected := comparatorSpans(clause)
	for i, t := range tokens {
		if overlaps(protected, t.Start, t.End) {
			continue
		}
		lower := t.Lower()
		if i+1 < len(tokens) {
			pair := lower + " " + tokens[i+1].Lower()
			if lexicon.IsNegationTerm(pair) {
				return t.Start, tokens[i+1].End, true
			}
		}
		if lexicon.IsNegationTerm(lower) || strings.HasSuffix(lower, "n't") || strings.HasSuffix(lower, "n’t") {
			return t.Start, t.End, true
		}
	}
	return 0, 0, false
}

func (b *SyntaxBackend) DetectTimeFrame(clause string) TimeFrameResult {
	tokens, err := b.tag(clause)
	if err != nil {
		res := b.pattern.DetectTimeFrame(clause)
		res.Fallback = b.fallback("time_frame", err)
		return res
	}
	return detectTime(clause, tokens, true)
}

func (b *SyntaxBackend) Tokens(clause string) []Token {
	tokens, err := b.tag(clause)
	if err != nil {
		b.fallback("tokens", err)
		return tokenize(clause)
	}
	return tokens
}

func (b *SyntaxBackend) ResolveEntities(clause string) []Mention {
	tokens, err := b.tag(clause)
	if err != nil {
		b.fallback("entities", err)
		return b.pattern.ResolveEntities(clause)
	}
	return scanMentions(b.pattern.cat, b.pattern.threshold, clause, tokens, b.rules)
}
