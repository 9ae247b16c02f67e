package parser

import (
	"strings"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/types"
)

// BackendKind names a LinguisticBackend variant
type BackendKind string

const (
	BackendAuto        BackendKind = "auto"
	BackendPattern     BackendKind = "pattern"
	BackendSyntax      BackendKind = "syntax"
	BackendTransformer BackendKind = "transformer"
)

// ParseBackendKind maps a config string to a BackendKind
func ParseBackendKind(s string) (BackendKind, error) {
	switch k := BackendKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendPattern, BackendSyntax, BackendTransformer:
		return k, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrBackendUnavailable, "unknown backend %q", s),
		"use one of: auto, pattern, syntax, transformer")
}

// Method records which strategy produced a detector result
type Method string

const (
	MethodClassifier Method = "classifier"
	MethodSyntax     Method = "syntax"
	MethodPattern    Method = "pattern"
	MethodNone       Method = "none" // nothing to inspect
)

// LinguisticBackend is the capability surface the orchestrator parses with.
// Implementations handle their own fallbacks; callers never probe for
// optional capabilities.
type LinguisticBackend interface {
	Kind() BackendKind
	// HighFidelity is false when only pattern matching is available
	HighFidelity() bool
	Split(text string) CompoundResult
	DetectNegation(clause string) NegationResult
	DetectTimeFrame(clause string) TimeFrameResult
	// Tokens returns clause tokens with byte offsets, POS-tagged when possible
	Tokens(clause string) []Token
	ResolveEntities(clause string) []Mention
}

// NegationClassifier is a model that labels text as negated or not
type NegationClassifier interface {
	ClassifyNegation(text string) (negated bool, score float64, err error)
}

// BackendConfig is what every backend variant is built from
type BackendConfig struct {
	Catalog         *catalog.Catalog
	EntityThreshold float64
	Classifier      NegationClassifier // required for BackendTransformer
	TagCacheSize    int
}

// SelectBackend constructs the backend for kind. BackendAuto picks the
// transformer variant when a classifier is configured, otherwise syntax.
func SelectBackend(kind BackendKind, cfg BackendConfig) (LinguisticBackend, error) {
	if cfg.Catalog == nil {
		return nil, errors.Wrap(errors.ErrBackendUnavailable, "backend requires a catalog")
	}
	if cfg.EntityThreshold <= 0 {
		cfg.EntityThreshold = catalog.DefaultThreshold
	}

	if kind == BackendAuto || kind == "" {
		if cfg.Classifier != nil {
			kind = BackendTransformer
		} else {
			kind = BackendSyntax
		}
	}

	switch kind {
	case BackendPattern:
		return NewPatternBackend(cfg.Catalog, cfg.EntityThreshold), nil
	case BackendSyntax:
		return NewSyntaxBackend(cfg.Catalog, cfg.EntityThreshold, cfg.TagCacheSize)
	case BackendTransformer:
		if cfg.Classifier == nil {
			return nil, errors.WithHint(
				errors.Wrap(errors.ErrBackendUnavailable, "transformer backend requires a negation classifier"),
				"set parser.classifier_url or use backend = \"syntax\"")
		}
		syntax, err := NewSyntaxBackend(cfg.Catalog, cfg.EntityThreshold, cfg.TagCacheSize)
		if err != nil {
			return nil, err
		}
		return NewTransformerBackend(cfg.Classifier, syntax), nil
	}
	return nil, errors.Wrapf(errors.ErrBackendUnavailable, "unknown backend %q", kind)
}

// CompoundResult is the output of Split
type CompoundResult struct {
	Operator types.Operator
	Clauses  []string
	Method   Method
}

// NegationResult is the output of DetectNegation
type NegationResult struct {
	IsNegated  bool
	Confidence float64
	Scope      string // text the negation governs, empty when not negated
	Term       string
	Method     Method
	Fallback   *ParseError // set when a higher tier failed
}

// TimeValue is an explicit numeric time span like "5 games"
type TimeValue struct {
	Number float64
	Unit   string
}

// Span is a byte range of a clause
type Span struct {
	Start int
	End   int
}

// TimeFrameResult is the output of DetectTimeFrame
type TimeFrameResult struct {
	PrimaryFrame  string
	Position      string
	Quantifier    string
	SpecificValue *TimeValue
	Confidence    float64
	Method        Method
	// Spans covers the time expressions found, so condition matching can
	// ignore them.
	Spans []Span
	// ValueSpan covers the number and unit of SpecificValue
	ValueSpan *Span
	Fallback  *ParseError
}

// Found reports whether any temporal qualifier was detected
func (r TimeFrameResult) Found() bool {
	return r.PrimaryFrame != "" || r.SpecificValue != nil
}

// Mention is an entity reference found in a clause
type Mention struct {
	Text       string
	Start      int
	End        int
	Candidates []catalog.Entry // catalog order; more than one when the alias is shared
	Score      float64
	Method     Method
}
