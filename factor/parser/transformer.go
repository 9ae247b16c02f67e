package parser

import (
	"strings"

	"github.com/teranos/qfactor/internal/util"
	"github.com/teranos/qfactor/logger"
)

// TransformerBackend asks a NegationClassifier whether a clause is
// negated and answers everything else with its SyntaxBackend. Classifier
// errors fall through to syntax detection, which falls through to patterns.
type TransformerBackend struct {
	*SyntaxBackend
	classifier NegationClassifier
}

var _ LinguisticBackend = (*TransformerBackend)(nil)

func NewTransformerBackend(classifier NegationClassifier, syntax *SyntaxBackend) *TransformerBackend {
	return &TransformerBackend{SyntaxBackend: syntax, classifier: classifier}
}

func (b *TransformerBackend) Kind() BackendKind { return BackendTransformer }

func (b *TransformerBackend) DetectNegation(clause string) NegationResult {
	if strings.TrimSpace(clause) == "" {
		return NegationResult{Method: MethodNone}
	}
	negated, score, err := b.classifier.ClassifyNegation(clause)
	if err != nil {
		res := b.SyntaxBackend.DetectNegation(clause)
		res.Fallback = NewParseError(ErrorKindBackendUnavailable, "negation classifier failed").
			WithUnderlying(err).
			WithText(clause)
		b.log.Debugw("negation classifier failed, using syntax tier", logger.FieldError, err)
		return res
	}

	res := NegationResult{
		IsNegated:  negated,
		Confidence: util.Clamp(score, 0, 1),
		Method:     MethodClassifier,
	}
	if negated {
		// The classifier labels the clause; locate the term for the scope
		if _, start, end, ok := negationCandidate(clause); ok {
			res.Term = strings.ToLower(clause[start:end])
			res.Scope = modifierScope(clause, start, end)
		} else {
			res.Scope = strings.TrimSpace(clause)
		}
	}
	return res
}
