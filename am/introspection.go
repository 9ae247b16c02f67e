package am

import (
	"os"
	"sort"
	"strings"

	"github.com/teranos/qfactor/errors"
)

// ConfigSource says where a setting came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/qfactor/qfactor.toml
	SourceUser        ConfigSource = "user"        // ~/.qfactor/qfactor.toml
	SourceProject     ConfigSource = "project"     // nearest qfactor.toml
	SourceEnvironment ConfigSource = "environment" // QFACTOR_* env vars
)

// SourceInfo is a source plus the file path or variable name
type SourceInfo struct {
	Source ConfigSource
	Path   string
}

// SettingInfo is one effective setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// ConfigIntrospection lists every effective setting with its origin
type ConfigIntrospection struct {
	ConfigFiles []string      `json:"config_files"`
	Settings    []SettingInfo `json:"settings"`
}

// secretKeys are masked in introspection output
var secretKeys = map[string]bool{
	"parser.classifier_api_key": true,
}

// GetConfigIntrospection reports the loaded configuration with sources
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	if _, err := Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}
	v := GetViper()

	mu.Lock()
	sources := make(map[string]SourceInfo, len(ConfigSources))
	for k, s := range ConfigSources {
		sources[k] = s
	}
	files := append([]string(nil), ConfigFilesLoaded...)
	mu.Unlock()

	out := &ConfigIntrospection{ConfigFiles: files}
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if s, ok := sources[key]; ok {
			info = s
		}
		if env := envName(key); os.Getenv(env) != "" {
			info = SourceInfo{Source: SourceEnvironment, Path: env}
		}
		value := v.Get(key)
		if secretKeys[key] && value != "" {
			value = "********"
		}
		out.Settings = append(out.Settings, SettingInfo{
			Key:        key,
			Value:      value,
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return out, nil
}

// Summary counts settings per source
func (ci *ConfigIntrospection) Summary() map[ConfigSource]int {
	counts := make(map[ConfigSource]int)
	for _, s := range ci.Settings {
		counts[s.Source]++
	}
	return counts
}

func envName(key string) string {
	return "QFACTOR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
