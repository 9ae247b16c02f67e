package am

import (
	"strings"

	"github.com/teranos/qfactor/errors"
)

var validBackends = map[string]bool{
	"": true, "auto": true, "pattern": true, "syntax": true, "transformer": true,
}

// Validate checks ranges and cross-field requirements
func (c *Config) Validate() error {
	if !validBackends[strings.ToLower(c.Parser.Backend)] {
		return errors.WithHint(
			errors.Newf("parser.backend %q is not recognised", c.Parser.Backend),
			"use one of: auto, pattern, syntax, transformer")
	}
	if strings.EqualFold(c.Parser.Backend, "transformer") && c.Parser.ClassifierURL == "" {
		return errors.New("parser.classifier_url is required when parser.backend = \"transformer\"")
	}
	for key, val := range map[string]float64{
		"parser.entity_threshold":          c.Parser.EntityThreshold,
		"parser.condition_min_score":       c.Parser.ConditionMinScore,
		"parser.fuzzy_condition_threshold": c.Parser.FuzzyConditionThreshold,
	} {
		if val < 0 || val > 1 {
			return errors.Newf("%s must be within [0, 1], got %g", key, val)
		}
	}
	if c.Parser.TagCacheSize < 0 {
		return errors.Newf("parser.tag_cache_size must be >= 0, got %d", c.Parser.TagCacheSize)
	}
	if c.Parser.ClassifierTimeoutSeconds < 0 {
		return errors.Newf("parser.classifier_timeout_seconds must be >= 0, got %g", c.Parser.ClassifierTimeoutSeconds)
	}
	if c.Parser.ClassifierMaxRetries < 0 {
		return errors.Newf("parser.classifier_max_retries must be >= 0, got %d", c.Parser.ClassifierMaxRetries)
	}
	if c.Parser.ClassifierRatePerSecond < 0 {
		return errors.Newf("parser.classifier_rate_per_second must be >= 0, got %g", c.Parser.ClassifierRatePerSecond)
	}

	// Capacity 0 with the cache enabled falls back to the default size
	if c.Cache.Capacity < 0 {
		return errors.Newf("cache.capacity must be >= 0, got %d", c.Cache.Capacity)
	}

	if c.Storage.Enabled && strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path cannot be empty when storage is enabled")
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return errors.New("catalog.watch requires catalog.path")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be within 1-65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 0 {
		return errors.Newf("server.rate_limit_rps must be >= 0, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		return errors.Newf("server.rate_limit_burst must be >= 1 when rate limiting, got %d", c.Server.RateLimitBurst)
	}
	if c.Server.MaxBatchSize < 0 {
		return errors.Newf("server.max_batch_size must be >= 0, got %d", c.Server.MaxBatchSize)
	}
	return nil
}
