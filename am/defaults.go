package am

import (
	"fmt"

	"github.com/spf13/viper"
)

var defaultAllowedOrigins = []string{
	"http://localhost",
	"https://localhost",
	"http://127.0.0.1",
	"https://127.0.0.1",
}

// SetDefaults registers a default for every key so environment overrides
// resolve during Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("parser.backend", "auto")
	v.SetDefault("parser.entity_threshold", 0.75)
	v.SetDefault("parser.condition_min_score", 0.3)
	v.SetDefault("parser.fuzzy_condition_threshold", 0.75)
	v.SetDefault("parser.tag_cache_size", 512)
	v.SetDefault("parser.classifier_url", "")
	v.SetDefault("parser.classifier_api_key", "")
	v.SetDefault("parser.classifier_timeout_seconds", 2.0)
	v.SetDefault("parser.classifier_max_retries", 2)
	v.SetDefault("parser.classifier_rate_per_second", 0.0)
	v.SetDefault("parser.classifier_allow_private", true) // model servers usually run locally

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.capacity", 1000)

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.path", DefaultDatabasePath)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", defaultAllowedOrigins)
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.max_batch_size", 100)

	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars binds secrets to short, explicit variable names
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("parser.classifier_api_key", "QFACTOR_CLASSIFIER_API_KEY")
	v.BindEnv("parser.classifier_url", "QFACTOR_CLASSIFIER_URL", "QFACTOR_PARSER_CLASSIFIER_URL")
	v.BindEnv("storage.path", "QFACTOR_DATABASE_PATH", "QFACTOR_STORAGE_PATH")
}

// GetDatabasePath returns the storage path, falling back to the default
func (c *Config) GetDatabasePath() string {
	if c.Storage.Path == "" {
		return DefaultDatabasePath
	}
	return c.Storage.Path
}

// GetServerAllowedOrigins returns the CORS origins, falling back to localhost
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return append([]string(nil), defaultAllowedOrigins...)
	}
	return c.Server.AllowedOrigins
}

// GetServerPort returns the configured port or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == 0 {
		return DefaultServerPort
	}
	return c.Server.Port
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Parser: {Backend: %s}, Cache: {Capacity: %d}, Storage: {Enabled: %t, Path: %s}, Server: {Port: %d}}",
		c.Parser.Backend, c.Cache.Capacity, c.Storage.Enabled, c.Storage.Path, c.Server.Port)
}
