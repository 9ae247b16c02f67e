// Package am loads qfactor configuration from TOML files and QFACTOR_*
// environment variables.
package am

// Config is the complete qfactor configuration
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser" toml:"parser"`
	Cache   CacheConfig   `mapstructure:"cache" toml:"cache"`
	Catalog CatalogConfig `mapstructure:"catalog" toml:"catalog"`
	Storage StorageConfig `mapstructure:"storage" toml:"storage"`
	Server  ServerConfig  `mapstructure:"server" toml:"server"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
}

// ParserConfig tunes the factor parser
type ParserConfig struct {
	Backend                 string  `mapstructure:"backend" toml:"backend"` // auto, pattern, syntax, transformer
	EntityThreshold         float64 `mapstructure:"entity_threshold" toml:"entity_threshold"`
	ConditionMinScore       float64 `mapstructure:"condition_min_score" toml:"condition_min_score"`
	FuzzyConditionThreshold float64 `mapstructure:"fuzzy_condition_threshold" toml:"fuzzy_condition_threshold"`
	TagCacheSize            int     `mapstructure:"tag_cache_size" toml:"tag_cache_size"`

	// Negation model server; empty disables the transformer tier
	ClassifierURL            string  `mapstructure:"classifier_url" toml:"classifier_url"`
	ClassifierAPIKey         string  `mapstructure:"classifier_api_key" toml:"classifier_api_key,omitempty"`
	ClassifierTimeoutSeconds float64 `mapstructure:"classifier_timeout_seconds" toml:"classifier_timeout_seconds"`
	ClassifierMaxRetries     int     `mapstructure:"classifier_max_retries" toml:"classifier_max_retries"`
	ClassifierRatePerSecond  float64 `mapstructure:"classifier_rate_per_second" toml:"classifier_rate_per_second"`
	ClassifierAllowPrivate   bool    `mapstructure:"classifier_allow_private" toml:"classifier_allow_private"`
}

// CacheConfig configures the parse-result LRU
type CacheConfig struct {
	Enabled  bool `mapstructure:"enabled" toml:"enabled"`
	Capacity int  `mapstructure:"capacity" toml:"capacity"`
}

// CatalogConfig points at an entity catalog; empty uses the embedded one
type CatalogConfig struct {
	Path  string `mapstructure:"path" toml:"path"`
	Watch bool   `mapstructure:"watch" toml:"watch"` // reload the server when the file changes
}

// StorageConfig configures parse history
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path" toml:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port           int      `mapstructure:"port" toml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps" toml:"rate_limit_rps"` // 0 disables limiting
	RateLimitBurst int      `mapstructure:"rate_limit_burst" toml:"rate_limit_burst"`
	MaxBatchSize   int      `mapstructure:"max_batch_size" toml:"max_batch_size"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

const (
	DefaultServerPort   = 8790
	DefaultDatabasePath = "qfactor.db"
	ConfigFileName      = "qfactor.toml"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
