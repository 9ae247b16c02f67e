package commands

import (
	"time"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/classifier"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/logger"
)

// loadCatalog returns the configured catalog, or the embedded one when no
// path is set
func loadCatalog(cfg *am.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, errors.WithHint(err, "check catalog.path or unset it to use the built-in catalog")
	}
	return cat, nil
}

// newClassifier builds the negation classifier client, nil when no URL is
// configured
func newClassifier(cfg *am.Config) (*classifier.Client, error) {
	pc := cfg.Parser
	if pc.ClassifierURL == "" {
		return nil, nil
	}
	return classifier.New(classifier.Config{
		URL:           pc.ClassifierURL,
		APIKey:        pc.ClassifierAPIKey,
		Timeout:       time.Duration(pc.ClassifierTimeoutSeconds * float64(time.Second)),
		MaxRetries:    pc.ClassifierMaxRetries,
		RatePerSecond: pc.ClassifierRatePerSecond,
		AllowPrivate:  pc.ClassifierAllowPrivate,
		Logger:        logger.ComponentLogger("classifier"),
	})
}

// buildParser assembles a parser from configuration
func buildParser(cfg *am.Config) (*parser.Parser, error) {
	kind, err := parser.ParseBackendKind(cfg.Parser.Backend)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	opts := []parser.Option{
		parser.WithCatalog(cat),
		parser.WithLogger(logger.ComponentLogger("parser")),
	}
	clf, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}
	if clf != nil {
		opts = append(opts, parser.WithClassifier(clf))
	}

	p, err := parser.New(parser.Config{
		Backend:                 kind,
		EntityThreshold:         cfg.Parser.EntityThreshold,
		ConditionMinScore:       cfg.Parser.ConditionMinScore,
		FuzzyConditionThreshold: cfg.Parser.FuzzyConditionThreshold,
		CacheCapacity:           cfg.Cache.Capacity,
		DisableCache:            !cfg.Cache.Enabled,
		TagCacheSize:            cfg.Parser.TagCacheSize,
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build parser")
	}
	logger.Debugw("parser ready", logger.FieldBackend, p.Backend().Kind(), "catalog", cat.Counts())
	return p, nil
}

// loadParser loads configuration and builds the parser from it
func loadParser() (*am.Config, *parser.Parser, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}
	p, err := buildParser(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}
