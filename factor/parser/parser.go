// Package parser turns free-text sports factor statements into structured
// ParsedFactor values.
//
// A Parser splits the sentence into clauses, then for each clause resolves
// entities, extracts a condition, attaches the time frame and applies
// negation. The assembled factor is classified, scored and cached. Parse
// never fails: internal errors are logged and converted into a minimal
// factor.
//
//	p, err := parser.New(parser.DefaultConfig())
//	pf := p.Parse("LeBron James scores more than 25 points")
//	ok, reason := parser.Validate(pf)
package parser

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/cache"
	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/logger"
)

// Stage is a step of the parse pipeline
type Stage string

const (
	StageReceived   Stage = "received"
	StageSplit      Stage = "split"
	StageExtraction Stage = "per_clause_extraction"
	StageAssembled  Stage = "assembled"
	StageClassified Stage = "classified"
	StageScored     Stage = "scored"
	StageCached     Stage = "cached"
	StageReturned   Stage = "returned"
)

// Config tunes a Parser. Zero values fall back to defaults.
type Config struct {
	Backend                 BackendKind
	EntityThreshold         float64
	ConditionMinScore       float64
	FuzzyConditionThreshold float64
	CacheCapacity           int
	DisableCache            bool
	TagCacheSize            int
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Backend:                 BackendAuto,
		EntityThreshold:         catalog.DefaultThreshold,
		ConditionMinScore:       defaultConditionMinScore,
		FuzzyConditionThreshold: defaultFuzzyThreshold,
		CacheCapacity:           cache.DefaultCapacity,
		TagCacheSize:            defaultTagCacheSize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.EntityThreshold <= 0 {
		c.EntityThreshold = d.EntityThreshold
	}
	if c.ConditionMinScore <= 0 {
		c.ConditionMinScore = d.ConditionMinScore
	}
	if c.FuzzyConditionThreshold <= 0 {
		c.FuzzyConditionThreshold = d.FuzzyConditionThreshold
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = d.CacheCapacity
	}
	if c.TagCacheSize <= 0 {
		c.TagCacheSize = d.TagCacheSize
	}
	return c
}

// Option customizes a Parser at construction
type Option func(*Parser)

// WithCatalog replaces the embedded entity catalog
func WithCatalog(c *catalog.Catalog) Option {
	return func(p *Parser) { p.catalog = c }
}

// WithClassifier supplies the negation model for the transformer backend
func WithClassifier(c NegationClassifier) Option {
	return func(p *Parser) { p.classifier = c }
}

// WithBackend installs a backend directly, skipping SelectBackend
func WithBackend(b LinguisticBackend) Option {
	return func(p *Parser) { p.backend = b }
}

// WithLogger sets the parser's logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Parser) { p.log = l }
}

// WithClock overrides the source of parsing_time
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// ParseOptions carries per-call context
type ParseOptions struct {
	// League biases ambiguous aliases toward one league and fills the
	// league when nothing in the text implies it. ID, name or alias.
	League string
}

// Parser is safe for concurrent use. The catalog is read-only and the
// cache is internally locked.
type Parser struct {
	cfg        Config
	catalog    *catalog.Catalog
	backend    LinguisticBackend
	classifier NegationClassifier
	cache      *cache.Cache
	conditions conditionExtractor
	log        *zap.SugaredLogger
	now        func() time.Time
}

// New builds a parser. The backend is chosen once here.
func New(cfg Config, opts ...Option) (*Parser, error) {
	cfg = cfg.withDefaults()
	p := &Parser{
		cfg: cfg,
		log: logger.ComponentLogger("parser"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load entity catalog")
		}
		p.catalog = cat
	}

	if p.backend == nil {
		backend, err := SelectBackend(cfg.Backend, BackendConfig{
			Catalog:         p.catalog,
			EntityThreshold: cfg.EntityThreshold,
			Classifier:      p.classifier,
			TagCacheSize:    cfg.TagCacheSize,
		})
		if err != nil {
			return nil, err
		}
		p.backend = backend
	}

	if !cfg.DisableCache {
		c, err := cache.New(cfg.CacheCapacity)
		if err != nil {
			return nil, err
		}
		p.cache = c
	}

	p.conditions = conditionExtractor{
		cat:            p.catalog,
		minScore:       cfg.ConditionMinScore,
		fuzzyThreshold: cfg.FuzzyConditionThreshold,
	}

	p.log.Debugw("parser ready",
		logger.FieldBackend, p.backend.Kind(),
		"high_fidelity", p.backend.HighFidelity(),
		"cache_capacity", cfg.CacheCapacity,
		"cache_enabled", p.cache != nil)
	return p, nil
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
)

// Default returns a lazily built process-wide parser. Servers and CLIs
// should construct their own with New and pass it down instead.
func Default() *Parser {
	defaultOnce.Do(func() {
		p, err := New(DefaultConfig())
		if err != nil {
			logger.Warnw("default parser unavailable, using pattern backend", logger.FieldError, err)
			cfg := DefaultConfig()
			cfg.Backend = BackendPattern
			if p, err = New(cfg); err != nil {
				panic(errors.Wrap(err, "embedded catalog is invalid"))
			}
		}
		defaultParser = p
	})
	return defaultParser
}

// Catalog returns the entity catalog the parser resolves against
func (p *Parser) Catalog() *catalog.Catalog { return p.catalog }

// Backend returns the linguistic backend chosen at construction
func (p *Parser) Backend() LinguisticBackend { return p.backend }

// Parse parses one factor statement
func (p *Parser) Parse(text string) *types.ParsedFactor {
	return p.ParseWithOptions(text, ParseOptions{})
}

// ParseWithOptions parses text with per-call context. It never fails; a
// recovered internal error yields types.NewMinimal.
func (p *Parser) ParseWithOptions(text string, opts ParseOptions) (pf *types.ParsedFactor) {
	start := time.Now()
	key := cache.Key(text, opts.League)

	if p.cache != nil {
		if hit, ok := p.cache.Get(key); ok {
			hit.RawText = text
			p.log.Debugw("parse served from cache",
				logger.FieldFactorText, text,
				logger.FieldCacheHit, true)
			return hit
		}
	}

	defer func() {
		if r := recover(); r != nil {
			perr := NewParseError(ErrorKindInternal, "recovered from panic").
				WithText(text).
				WithUnderlying(errors.Newf("%v", r))
			p.log.Errorw("factor parse failed, returning minimal factor",
				logger.FieldFactorText, text,
				logger.FieldErrorKind, perr.Kind,
				logger.FieldError, perr.Error())
			pf = types.NewMinimal(text)
			pf.ParsingTime = p.now().UTC()
		}
	}()

	pf = p.parse(text, opts)

	if p.cache != nil {
		p.cache.Add(key, pf)
		p.stage(StageCached, text)
	}
	p.log.Debugw("factor parsed",
		logger.FieldState, StageReturned,
		logger.FieldFactorText, text,
		logger.FieldFactorType, pf.FactorType,
		logger.FieldConfidence, pf.Confidence,
		logger.FieldCacheHit, false,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return pf
}

func (p *Parser) stage(s Stage, text string, keysAndValues ...interface{}) {
	p.log.Debugw("parse stage", append([]interface{}{
		logger.FieldState, s,
		logger.FieldFactorText, text,
	}, keysAndValues...)...)
}

func (p *Parser) parse(text string, opts ParseOptions) *types.ParsedFactor {
	pf := types.NewParsedFactor(text)
	p.stage(StageReceived, text)

	if !hasWordRune(text) {
		perr := NewParseError(ErrorKindMalformedInput, "no words to parse").WithText(text).WithStage(StageReceived)
		p.log.Debugw("nothing to parse", logger.FieldErrorKind, perr.Kind, logger.FieldError, perr.Error())
		return p.finish(pf)
	}

	split := p.backend.Split(text)
	pf.ConditionOperator = split.Operator
	p.stage(StageSplit, text,
		logger.FieldOperator, split.Operator,
		logger.FieldClauseCount, len(split.Clauses),
		logger.FieldMethod, split.Method)

	hint := ""
	if opts.League != "" {
		if l, ok := p.catalog.FindLeague(opts.League); ok {
			hint = l.ID
		}
	}

	var ents entityState
	for i, clause := range split.Clauses {
		mentions := p.backend.ResolveEntities(clause)
		ents.add(mentions, hint)

		tokens := p.backend.Tokens(clause)
		tf := p.backend.DetectTimeFrame(clause)
		cond, ok := p.conditions.extract(clause, tokens, mentions, tf)
		if !ok {
			continue
		}
		conds := []types.FactorCondition{cond}

		if tf.PrimaryFrame != "" {
			for k := range conds {
				conds[k].TimeFrame = tf.PrimaryFrame
				conds[k].TimePosition = tf.Position
			}
		}

		neg := p.backend.DetectNegation(clause)
		if neg.IsNegated {
			ApplyNegation(conds)
			pf.IsNegated = true
		}
		for _, fb := range []*ParseError{neg.Fallback, tf.Fallback} {
			if fb != nil {
				p.log.Debugw("detector fallback", logger.FieldErrorKind, fb.Kind, logger.FieldError, fb.Error())
			}
		}

		pf.Conditions = append(pf.Conditions, conds...)
		p.stage(StageExtraction, text,
			"clause", i,
			"mentions", len(mentions),
			"condition", cond.Text,
			"negated", neg.IsNegated,
			"time_frame", tf.PrimaryFrame)
	}

	ents.apply(pf, p.catalog, hint)
	p.stage(StageAssembled, text, "entity_type", pf.EntityType, "conditions", len(pf.Conditions))
	return p.finish(pf)
}

func (p *Parser) finish(pf *types.ParsedFactor) *types.ParsedFactor {
	pf.FactorType = Classify(pf)
	p.stage(StageClassified, pf.RawText, logger.FieldFactorType, pf.FactorType)
	pf.Confidence = Score(pf, p.backend.HighFidelity())
	p.stage(StageScored, pf.RawText, logger.FieldConfidence, pf.Confidence)
	pf.ParsingTime = p.now().UTC()
	return pf
}

// entityState accumulates entity mentions across clauses
type entityState struct {
	player, team, opponent, league *catalog.Entry
	entityType                     types.EntityType
}

func (s *entityState) add(mentions []Mention, hint string) {
	var sawPlayer, sawTeam bool
	for _, m := range mentions {
		if len(m.Candidates) == 0 {
			continue
		}
		e := pickCandidate(m.Candidates, hint)
		switch e.Kind {
		case catalog.KindPlayer:
			sawPlayer = true
			if s.player == nil {
				s.player = &e
			}
		case catalog.KindTeam:
			sawTeam = true
			if s.team == nil {
				s.team = &e
			} else if s.opponent == nil && e.ID != s.team.ID {
				s.opponent = &e
			}
		case catalog.KindLeague:
			if s.league == nil {
				s.league = &e
			}
		}
	}
	if s.entityType == "" {
		switch {
		case sawPlayer:
			s.entityType = types.EntityPlayer
		case sawTeam:
			s.entityType = types.EntityTeam
		}
	}
}

func pickCandidate(candidates []catalog.Entry, hint string) catalog.Entry {
	if hint != "" {
		for _, c := range candidates {
			if c.League == hint || (c.Kind == catalog.KindLeague && c.ID == hint) {
				return c
			}
		}
	}
	return candidates[0]
}

func (s *entityState) apply(pf *types.ParsedFactor, cat *catalog.Catalog, hint string) {
	if s.player != nil {
		pf.Player = s.player.Name
	}
	if s.team != nil {
		pf.Team = s.team.Name
	}
	if s.opponent != nil {
		pf.Opponent = s.opponent.Name
	}
	switch {
	case s.league != nil:
		pf.League = s.league.Name
	case s.team != nil && s.team.League != "":
		pf.League = cat.LeagueName(s.team.League)
	case s.player != nil && s.player.League != "":
		pf.League = cat.LeagueName(s.player.League)
	case hint != "":
		pf.League = cat.LeagueName(hint)
	}
	if s.entityType != "" {
		pf.EntityType = s.entityType
	}
}

// Stats is a snapshot of parser state for health endpoints
type Stats struct {
	Backend      BackendKind  `json:"backend"`
	HighFidelity bool         `json:"high_fidelity"`
	CacheEnabled bool         `json:"cache_enabled"`
	Cache        *cache.Stats `json:"cache,omitempty"`
}

// Stats reports the backend in use and cache counters
func (p *Parser) Stats() Stats {
	s := Stats{
		Backend:      p.backend.Kind(),
		HighFidelity: p.backend.HighFidelity(),
		CacheEnabled: p.cache != nil,
	}
	if p.cache != nil {
		cs := p.cache.Stats()
		s.Cache = &cs
	}
	return s
}

// PurgeCache drops every cached parse
func (p *Parser) PurgeCache() {
	if p.cache != nil {
		p.cache.Purge()
	}
}

func (s Stats) String() string {
	if s.Cache == nil {
		return fmt.Sprintf("backend=%s cache=off", s.Backend)
	}
	return fmt.Sprintf("backend=%s cache=%d/%d hit_rate=%.2f", s.Backend, s.Cache.Size, s.Cache.Capacity, s.Cache.HitRate())
}
